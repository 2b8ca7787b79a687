package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// lockKey is shared by every subtelemetry process migrating the same database.
const lockKey int64 = 0x5354_454c_4d00

var errLockHeld = errors.New("migration_lock_held")

type unlockFunc func(ctx context.Context) error

func acquireAdvisoryLock(ctx context.Context, db *sql.DB) (unlockFunc, error) {
	var locked bool
	if err := db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockKey).Scan(&locked); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		return nil, errLockHeld
	}

	return func(ctx context.Context) error {
		var released bool
		if err := db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey).Scan(&released); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		if !released {
			return errors.New("advisory lock was not held by this session")
		}
		return nil
	}, nil
}
