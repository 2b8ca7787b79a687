package domain

import (
	"context"

	"github.com/railzwaylabs/subtelemetry/internal/settings"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
)

type Service interface {
	Metrics(ctx context.Context) (telemetrydomain.ProductMetrics, error)
}

type GiftingSource interface {
	Gifting(ctx context.Context) (settings.Gifting, error)
}

// Per-product gifting overrides. Anything else follows the store default.
const (
	GiftingEnabled  = "enabled"
	GiftingDisabled = "disabled"
)
