package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/productmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

// postsTableRepo reads products stored as entities with their subscription
// settings in the meta table.
type postsTableRepo struct {
	termResolver
}

func (r *postsTableRepo) Frequencies(ctx context.Context, db *gorm.DB, terms domain.TypeTerms) ([]telemetrydomain.FrequencyRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(per.meta_value, '') AS billing_period,
			COALESCE(iv.meta_value, '') AS billing_interval,
			COUNT(p.id) AS count
		 FROM %[1]s p
		 LEFT JOIN %[1]s parent ON parent.id = p.post_parent
		 LEFT JOIN %[2]s per ON per.post_id = p.id AND per.meta_key = ?
		 LEFT JOIN %[2]s iv ON iv.post_id = p.id AND iv.meta_key = ?
		 WHERE (p.post_type = ? AND p.post_status = ? AND %[3]s)
		    OR (p.post_type = ? AND parent.post_status = ? AND %[4]s)
		 GROUP BY COALESCE(per.meta_value, ''), COALESCE(iv.meta_value, '')`,
		r.t.Posts, r.t.PostMeta, r.hasTerm("p.id"), r.hasTerm("parent.id"))

	var rows []telemetrydomain.FrequencyRow
	err := db.WithContext(ctx).Raw(query,
		storage.MetaProductPeriod, storage.MetaProductInterval,
		storage.TypeProduct, storage.PostStatusPublish, terms.Subscription,
		storage.TypeProductVariation, storage.PostStatusPublish, terms.VariableSubscription,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) GiftableCount(ctx context.Context, db *gorm.DB, terms domain.TypeTerms, defaultEnabled bool) (int64, error) {
	mode := `COALESCE(g.meta_value, '') <> ?`
	override := domain.GiftingDisabled
	if !defaultEnabled {
		mode = `g.meta_value = ?`
		override = domain.GiftingEnabled
	}

	query := fmt.Sprintf(`SELECT COUNT(p.id)
		 FROM %[1]s p
		 LEFT JOIN %[2]s g ON g.post_id = p.id AND g.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status = ?
		   AND %[3]s
		   AND %[4]s`, r.t.Posts, r.t.PostMeta, r.hasAnyTerm("p.id"), mode)

	var count int64
	err := db.WithContext(ctx).Raw(query,
		storage.MetaProductGifting,
		storage.TypeProduct, storage.PostStatusPublish,
		[]int64{terms.Subscription, terms.VariableSubscription},
		override,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
