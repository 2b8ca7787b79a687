package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewRegistry),
	fx.Provide(
		func(r *Registry) prometheus.Registerer { return r.Registry },
		func(r *Registry) prometheus.Gatherer { return r.Registry },
	),
	fx.Provide(NewMeterProvider),
	fx.Invoke(RegisterTracerProvider),
)
