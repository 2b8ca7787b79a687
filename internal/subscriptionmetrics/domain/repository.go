package domain

import (
	"context"

	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

// Repository reads subscriptions. Subscriptions in ignored statuses are
// invisible to every method.
type Repository interface {
	// SubscriberCounts counts distinct customers. A customer with at least one
	// active-like subscription is active; every other customer is inactive.
	// Both numbers come from one statement.
	SubscriberCounts(ctx context.Context, db *gorm.DB) (telemetrydomain.SubscriberRow, error)
	// RenewalModes splits active-like subscriptions by the manual renewal flag.
	RenewalModes(ctx context.Context, db *gorm.DB) (telemetrydomain.RenewalModeRow, error)
	// Frequencies groups active-like subscriptions by billing period and interval.
	Frequencies(ctx context.Context, db *gorm.DB) ([]telemetrydomain.FrequencyRow, error)
	PaymentMethods(ctx context.Context, db *gorm.DB) ([]telemetrydomain.PaymentMethodRow, error)
	StatusCounts(ctx context.Context, db *gorm.DB) ([]telemetrydomain.StatusRow, error)
}
