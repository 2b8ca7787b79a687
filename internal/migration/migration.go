package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/railzwaylabs/subtelemetry/internal/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run creates the tables this service owns. Store tables are never touched.
// On postgres the embedded migrations run under an advisory lock; other
// drivers get the same shape from the gorm model.
func Run(ctx context.Context, conn *gorm.DB, driver string, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if driver != "postgres" {
		if err := conn.WithContext(ctx).AutoMigrate(&scheduler.Action{}); err != nil {
			return fmt.Errorf("auto migrate scheduled actions: %w", err)
		}
		log.Info("scheduler tables migrated", zap.String("driver", driver))
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	version, err := runPostgres(ctx, sqlDB)
	if err != nil {
		return err
	}

	checksum, err := Checksum()
	if err != nil {
		return err
	}
	log.Info("migrations applied",
		zap.Uint("version", version),
		zap.String("checksum", checksum),
	)
	return nil
}

func runPostgres(ctx context.Context, db *sql.DB) (uint, error) {
	unlock, err := acquireAdvisoryLock(ctx, db)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	latest, err := LatestVersion()
	if err != nil {
		return 0, err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "subtelemetry_schema_migrations"})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return 0, err
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	current, err := ensureNotDirty(migrator)
	if err != nil {
		return 0, err
	}
	if current != latest {
		return 0, fmt.Errorf("schema version mismatch after migrate: got %d want %d", current, latest)
	}
	return current, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
