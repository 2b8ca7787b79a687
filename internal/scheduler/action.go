package scheduler

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action is one recurring job. (hook, group_name) is unique, which is what
// makes registration idempotent across processes.
type Action struct {
	ID              snowflake.ID   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Hook            string         `gorm:"column:hook;type:varchar(191);not null;uniqueIndex:ux_scheduled_actions_hook_group"`
	GroupName       string         `gorm:"column:group_name;type:varchar(191);not null;uniqueIndex:ux_scheduled_actions_hook_group"`
	Args            datatypes.JSON `gorm:"column:args"`
	IntervalSeconds int64          `gorm:"column:interval_seconds;not null"`
	NextRunAt       time.Time      `gorm:"column:next_run_at;not null;index"`
	LastRunAt       *time.Time     `gorm:"column:last_run_at"`
	LastError       string         `gorm:"column:last_error;type:text"`
	Version         int64          `gorm:"column:version;not null;default:0"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (Action) TableName() string {
	return "scheduled_actions"
}

func (a Action) Interval() time.Duration {
	return time.Duration(a.IntervalSeconds) * time.Second
}
