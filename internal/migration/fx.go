package migration

import (
	"context"
	"time"

	"github.com/railzwaylabs/subtelemetry/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		return Run(ctx, conn, cfg.DB.Driver, log.Named("migration"))
	}),
)
