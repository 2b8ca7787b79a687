package telemetry

import (
	"context"

	"github.com/railzwaylabs/subtelemetry/internal/config"
	"github.com/railzwaylabs/subtelemetry/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	CollectHook   = "woocommerce_subscriptions_telemetry_collect"
	ScheduleGroup = "woocommerce-subscriptions"
)

// Scheduler is the part of the scheduler the collector registers with.
type Scheduler interface {
	Handle(hook string, h scheduler.Handler)
	ScheduleRecurring(ctx context.Context, r scheduler.Recurring) (bool, error)
}

// RegisterSchedule binds the collect hook and registers its recurring
// action. Registering again while one is pending changes nothing.
func RegisterSchedule(ctx context.Context, s Scheduler, c *Collector, cfg config.TelemetryConfig) (bool, error) {
	s.Handle(CollectHook, func(ctx context.Context, _ datatypes.JSON) error {
		_, err := c.Collect(ctx)
		return err
	})
	return s.ScheduleRecurring(ctx, scheduler.Recurring{
		Hook:         CollectHook,
		Group:        ScheduleGroup,
		Args:         []any{},
		InitialDelay: cfg.InitialDelay,
		Interval:     cfg.Interval,
	})
}

type scheduleParams struct {
	fx.In

	Lc        fx.Lifecycle
	Log       *zap.Logger
	Config    config.Config
	Scheduler *scheduler.Scheduler
	Collector *Collector
}

// InvokeSchedule registers the schedule when the application starts.
func InvokeSchedule(p scheduleParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := RegisterSchedule(ctx, p.Scheduler, p.Collector, p.Config.Telemetry)
			if err != nil {
				return err
			}
			p.Log.Named("telemetry").Info("telemetry schedule ensured", zap.Bool("created", created))
			return nil
		},
	})
}
