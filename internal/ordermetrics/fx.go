package ordermetrics

import (
	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics/repository"
	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ordermetrics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
