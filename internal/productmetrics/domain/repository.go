package domain

import (
	"context"

	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

// TypeTerms holds the taxonomy ids of the two subscription product types.
type TypeTerms struct {
	Subscription         int64
	VariableSubscription int64
}

// Resolved reports whether both product types exist in the store.
func (t TypeTerms) Resolved() bool {
	return t.Subscription != 0 && t.VariableSubscription != 0
}

type Repository interface {
	ProductTypeTerms(ctx context.Context, db *gorm.DB) (TypeTerms, error)
	// Frequencies groups published simple subscriptions and the variations of
	// published variable subscriptions by billing period and interval.
	Frequencies(ctx context.Context, db *gorm.DB, terms TypeTerms) ([]telemetrydomain.FrequencyRow, error)
	// GiftableCount counts published subscription products whose effective
	// gifting mode is enabled. Variations are never counted on their own.
	GiftableCount(ctx context.Context, db *gorm.DB, terms TypeTerms, defaultEnabled bool) (int64, error)
}
