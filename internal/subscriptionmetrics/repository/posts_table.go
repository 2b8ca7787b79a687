package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/domain"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

// postsTableRepo reads subscriptions stored as entities. Customer and
// payment method are meta attributes.
type postsTableRepo struct {
	t storage.Tables
}

func (r *postsTableRepo) SubscriberCounts(ctx context.Context, db *gorm.DB) (telemetrydomain.SubscriberRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(c.has_active), 0) AS active,
			COALESCE(SUM(1 - c.has_active), 0) AS inactive
		 FROM (
			SELECT COALESCE(cu.meta_value, '0') AS customer_id,
				MAX(CASE WHEN p.post_status IN ? THEN 1 ELSE 0 END) AS has_active
			FROM %s p
			LEFT JOIN %s cu ON cu.post_id = p.id AND cu.meta_key = ?
			WHERE p.post_type = ? AND p.post_status NOT IN ?
			GROUP BY COALESCE(cu.meta_value, '0')
		 ) c`, r.t.Posts, r.t.PostMeta)

	var row telemetrydomain.SubscriberRow
	err := db.WithContext(ctx).Raw(query,
		storage.ActiveStatuses(),
		storage.MetaCustomerUser,
		storage.TypeSubscription, storage.IgnoredStatuses(),
	).Scan(&row).Error
	return row, err
}

func (r *postsTableRepo) RenewalModes(ctx context.Context, db *gorm.DB) (telemetrydomain.RenewalModeRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(CASE WHEN m.meta_value = ? THEN 1 ELSE 0 END), 0) AS manual,
			COALESCE(SUM(CASE WHEN m.meta_value = ? THEN 0 ELSE 1 END), 0) AS automatic
		 FROM %s p
		 LEFT JOIN %s m ON m.post_id = p.id AND m.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status IN ?`, r.t.Posts, r.t.PostMeta)

	var row telemetrydomain.RenewalModeRow
	err := db.WithContext(ctx).Raw(query,
		domain.ManualRenewalFlag, domain.ManualRenewalFlag,
		storage.MetaManualRenewal,
		storage.TypeSubscription, storage.ActiveStatuses(),
	).Scan(&row).Error
	return row, err
}

func (r *postsTableRepo) Frequencies(ctx context.Context, db *gorm.DB) ([]telemetrydomain.FrequencyRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(per.meta_value, '') AS billing_period,
			COALESCE(iv.meta_value, '') AS billing_interval,
			COUNT(p.id) AS count
		 FROM %[1]s p
		 LEFT JOIN %[2]s per ON per.post_id = p.id AND per.meta_key = ?
		 LEFT JOIN %[2]s iv ON iv.post_id = p.id AND iv.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status IN ?
		 GROUP BY COALESCE(per.meta_value, ''), COALESCE(iv.meta_value, '')`, r.t.Posts, r.t.PostMeta)

	var rows []telemetrydomain.FrequencyRow
	err := db.WithContext(ctx).Raw(query,
		storage.MetaBillingPeriod, storage.MetaBillingIntvl,
		storage.TypeSubscription, storage.ActiveStatuses(),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) PaymentMethods(ctx context.Context, db *gorm.DB) ([]telemetrydomain.PaymentMethodRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(pm.meta_value, '') AS payment_method,
			COALESCE(SUM(CASE WHEN p.post_status IN ? THEN 1 ELSE 0 END), 0) AS active_count,
			COALESCE(SUM(CASE WHEN p.post_status IN ? THEN 0 ELSE 1 END), 0) AS inactive_count
		 FROM %s p
		 LEFT JOIN %s pm ON pm.post_id = p.id AND pm.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status NOT IN ?
		 GROUP BY COALESCE(pm.meta_value, '')
		 ORDER BY payment_method ASC`, r.t.Posts, r.t.PostMeta)

	var rows []telemetrydomain.PaymentMethodRow
	err := db.WithContext(ctx).Raw(query,
		storage.ActiveStatuses(), storage.ActiveStatuses(),
		storage.MetaPaymentMethod,
		storage.TypeSubscription, storage.IgnoredStatuses(),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) StatusCounts(ctx context.Context, db *gorm.DB) ([]telemetrydomain.StatusRow, error) {
	query := fmt.Sprintf(`SELECT p.post_status AS status, COUNT(p.id) AS count
		 FROM %s p
		 WHERE p.post_type = ? AND p.post_status NOT IN ?
		 GROUP BY p.post_status
		 ORDER BY status ASC`, r.t.Posts)

	var rows []telemetrydomain.StatusRow
	err := db.WithContext(ctx).
		Raw(query, storage.TypeSubscription, storage.IgnoredStatuses()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
