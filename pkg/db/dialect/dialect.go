// Package dialect renders the handful of SQL fragments that differ between
// the databases a store may run on.
package dialect

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

func Name(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return SQLite
	}
	return db.Dialector.Name()
}

// MonthBucket formats a timestamp column as YYYY-MM in UTC. Postgres renders
// timestamptz values in the session time zone unless told otherwise.
func MonthBucket(db *gorm.DB, column string) string {
	switch Name(db) {
	case Postgres:
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM')", column)
	case MySQL:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", column)
	default:
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
	}
}

// Numeric casts a text attribute to a number. Empty strings become NULL.
func Numeric(db *gorm.DB, expr string) string {
	switch Name(db) {
	case Postgres:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS NUMERIC)", expr)
	case MySQL:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS DECIMAL(26,8))", expr)
	default:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS REAL)", expr)
	}
}

// Integer casts a text attribute to an integer. Empty strings become NULL.
func Integer(db *gorm.DB, expr string) string {
	switch Name(db) {
	case Postgres:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS BIGINT)", expr)
	case MySQL:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS SIGNED)", expr)
	default:
		return fmt.Sprintf("CAST(NULLIF(%s, '') AS INTEGER)", expr)
	}
}
