package subscriptionmetrics

import (
	"github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/repository"
	"github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscriptionmetrics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
