package telemetry

import (
	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics"
	"github.com/railzwaylabs/subtelemetry/internal/productmetrics"
	"github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("telemetry.service",
	ordermetrics.Module,
	productmetrics.Module,
	subscriptionmetrics.Module,
	fx.Provide(NewMetrics),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.Service { return c }),
)
