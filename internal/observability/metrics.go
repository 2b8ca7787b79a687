package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the service's own metrics. Go runtime, process and gorm
// pool metrics stay on the default registerer; /metrics serves both.
type Registry struct {
	*prometheus.Registry
}

func NewRegistry() *Registry {
	return &Registry{Registry: prometheus.NewRegistry()}
}
