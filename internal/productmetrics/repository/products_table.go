package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/productmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

type productsTableRepo struct {
	termResolver
}

func (r *productsTableRepo) Frequencies(ctx context.Context, db *gorm.DB, terms domain.TypeTerms) ([]telemetrydomain.FrequencyRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(p.subscription_period, '') AS billing_period,
			COALESCE(p.subscription_period_interval, '') AS billing_interval,
			COUNT(p.id) AS count
		 FROM %[1]s p
		 LEFT JOIN %[1]s parent ON parent.id = p.parent_id
		 WHERE (p.parent_id = 0 AND p.status = ? AND %[2]s)
		    OR (p.parent_id <> 0 AND parent.status = ? AND %[3]s)
		 GROUP BY COALESCE(p.subscription_period, ''), COALESCE(p.subscription_period_interval, '')`,
		r.t.Products, r.hasTerm("p.id"), r.hasTerm("parent.id"))

	var rows []telemetrydomain.FrequencyRow
	err := db.WithContext(ctx).Raw(query,
		storage.PostStatusPublish, terms.Subscription,
		storage.PostStatusPublish, terms.VariableSubscription,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productsTableRepo) GiftableCount(ctx context.Context, db *gorm.DB, terms domain.TypeTerms, defaultEnabled bool) (int64, error) {
	mode := `COALESCE(p.gifting, '') <> ?`
	override := domain.GiftingDisabled
	if !defaultEnabled {
		mode = `p.gifting = ?`
		override = domain.GiftingEnabled
	}

	query := fmt.Sprintf(`SELECT COUNT(p.id)
		 FROM %s p
		 WHERE p.parent_id = 0 AND p.status = ?
		   AND %s
		   AND %s`, r.t.Products, r.hasAnyTerm("p.id"), mode)

	var count int64
	err := db.WithContext(ctx).Raw(query,
		storage.PostStatusPublish,
		[]int64{terms.Subscription, terms.VariableSubscription},
		override,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
