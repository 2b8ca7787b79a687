package productmetrics

import (
	"github.com/railzwaylabs/subtelemetry/internal/productmetrics/repository"
	"github.com/railzwaylabs/subtelemetry/internal/productmetrics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("productmetrics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
