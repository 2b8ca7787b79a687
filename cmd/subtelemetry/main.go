package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/subtelemetry/internal/cache"
	"github.com/railzwaylabs/subtelemetry/internal/clock"
	"github.com/railzwaylabs/subtelemetry/internal/config"
	"github.com/railzwaylabs/subtelemetry/internal/gateway"
	"github.com/railzwaylabs/subtelemetry/internal/migration"
	"github.com/railzwaylabs/subtelemetry/internal/observability"
	"github.com/railzwaylabs/subtelemetry/internal/redis"
	"github.com/railzwaylabs/subtelemetry/internal/scheduler"
	"github.com/railzwaylabs/subtelemetry/internal/seed"
	"github.com/railzwaylabs/subtelemetry/internal/server"
	"github.com/railzwaylabs/subtelemetry/internal/settings"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "subtelemetry",
		Short:   "Subscription store telemetry",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(
		newMigrateCmd(),
		newServeCmd(),
		newSchedulerCmd(),
		newAllCmd(),
		newCollectCmd(),
		newGetCmd(),
		newSeedCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the scheduler tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the telemetry HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(serviceModules(), server.Module).Run()
			return nil
		},
	}
}

func newSchedulerCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Register the collection schedule and run due actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := resetSchedule(cmd.Context()); err != nil {
					return err
				}
			}
			fx.New(
				serviceModules(),
				fx.Invoke(scheduler.Run),
				fx.Invoke(telemetry.InvokeSchedule),
			).Run()
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the pending collection action before registering it again")
	return cmd
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then the HTTP API and the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			fx.New(
				serviceModules(),
				server.Module,
				fx.Invoke(scheduler.Run),
				fx.Invoke(telemetry.InvokeSchedule),
			).Run()
			return nil
		},
	}
}

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Compute a fresh snapshot, cache it and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTelemetry(cmd.Context(), func(ctx context.Context, svc telemetrydomain.Service) error {
				snap, err := svc.Collect(ctx)
				if err != nil {
					return err
				}
				return printJSON(snap)
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the cached snapshot, computing one on a miss",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTelemetry(cmd.Context(), func(ctx context.Context, svc telemetrydomain.Service) error {
				snap, err := svc.Get(ctx)
				if err != nil {
					return err
				}
				return printJSON(snap)
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var createTables bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo store into the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				conn   *gorm.DB
				schema storage.Schema
				tables storage.Tables
				clk    clock.Clock
				log    *zap.Logger
			)
			app := fx.New(
				baseModules(),
				fx.Populate(&conn, &schema, &tables, &clk, &log),
			)
			return runOnce(cmd.Context(), app, func(ctx context.Context) error {
				if createTables {
					if err := seed.CreateTables(conn, tables); err != nil {
						return err
					}
				}
				if err := seed.Write(ctx, conn, schema, tables, seed.Demo(clk.Now(ctx))); err != nil {
					return err
				}
				log.Info("demo store written", zap.String("schema", string(schema)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&createTables, "create-tables", false, "create the store tables of both layouts first")
	return cmd
}

// baseModules opens the store; serviceModules adds everything the collector needs.
func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		storage.Module,
	)
}

func serviceModules() fx.Option {
	return fx.Options(
		baseModules(),
		redis.Module,
		cache.Module,
		settings.Module,
		gateway.Module,
		scheduler.Module,
		telemetry.Module,
	)
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func resetSchedule(ctx context.Context) error {
	var s *scheduler.Scheduler
	app := fx.New(serviceModules(), fx.Populate(&s))
	return runOnce(ctx, app, func(ctx context.Context) error {
		_, err := s.Unschedule(ctx, telemetry.CollectHook, telemetry.ScheduleGroup)
		return err
	})
}

func withTelemetry(ctx context.Context, fn func(context.Context, telemetrydomain.Service) error) error {
	var svc telemetrydomain.Service
	app := fx.New(serviceModules(), fx.Populate(&svc))
	return runOnce(ctx, app, func(ctx context.Context) error {
		return fn(ctx, svc)
	})
}

func runOnce(ctx context.Context, app *fx.App, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()
	return fn(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
