package domain

import (
	"context"

	"github.com/railzwaylabs/subtelemetry/internal/gateway"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
)

type Service interface {
	Metrics(ctx context.Context) (telemetrydomain.SubscriptionMetrics, error)
}

type CapabilityLookup interface {
	Lookup(id string) gateway.Capabilities
}

// ManualRenewalFlag is the only value of the manual renewal attribute that
// marks a subscription as manual.
const ManualRenewalFlag = "true"
