package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/railzwaylabs/subtelemetry/internal/subscriptionmetrics/domain"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"gorm.io/gorm"
)

type ordersTableRepo struct {
	t storage.Tables
}

func (r *ordersTableRepo) SubscriberCounts(ctx context.Context, db *gorm.DB) (telemetrydomain.SubscriberRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(c.has_active), 0) AS active,
			COALESCE(SUM(1 - c.has_active), 0) AS inactive
		 FROM (
			SELECT o.customer_id AS customer_id,
				MAX(CASE WHEN o.status IN ? THEN 1 ELSE 0 END) AS has_active
			FROM %s o
			WHERE o.type = ? AND o.status NOT IN ?
			GROUP BY o.customer_id
		 ) c`, r.t.Orders)

	var row telemetrydomain.SubscriberRow
	err := db.WithContext(ctx).
		Raw(query, storage.ActiveStatuses(), storage.TypeSubscription, storage.IgnoredStatuses()).
		Scan(&row).Error
	return row, err
}

func (r *ordersTableRepo) RenewalModes(ctx context.Context, db *gorm.DB) (telemetrydomain.RenewalModeRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(CASE WHEN m.meta_value = ? THEN 1 ELSE 0 END), 0) AS manual,
			COALESCE(SUM(CASE WHEN m.meta_value = ? THEN 0 ELSE 1 END), 0) AS automatic
		 FROM %s o
		 LEFT JOIN %s m ON m.order_id = o.id AND m.meta_key = ?
		 WHERE o.type = ? AND o.status IN ?`, r.t.Orders, r.t.OrdersMeta)

	var row telemetrydomain.RenewalModeRow
	err := db.WithContext(ctx).Raw(query,
		domain.ManualRenewalFlag, domain.ManualRenewalFlag,
		storage.MetaManualRenewal,
		storage.TypeSubscription, storage.ActiveStatuses(),
	).Scan(&row).Error
	return row, err
}

func (r *ordersTableRepo) Frequencies(ctx context.Context, db *gorm.DB) ([]telemetrydomain.FrequencyRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(per.meta_value, '') AS billing_period,
			COALESCE(iv.meta_value, '') AS billing_interval,
			COUNT(o.id) AS count
		 FROM %[1]s o
		 LEFT JOIN %[2]s per ON per.order_id = o.id AND per.meta_key = ?
		 LEFT JOIN %[2]s iv ON iv.order_id = o.id AND iv.meta_key = ?
		 WHERE o.type = ? AND o.status IN ?
		 GROUP BY COALESCE(per.meta_value, ''), COALESCE(iv.meta_value, '')`, r.t.Orders, r.t.OrdersMeta)

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

func (r *ordersTableRepo) PaymentMethods(ctx context.Context, db *gorm.DB) ([]telemetrydomain.PaymentMethodRow, error) {
	query := fmt.Sprintf(`SELECT COALESCE(o.payment_method, '') AS payment_method,
			COALESCE(SUM(CASE WHEN o.status IN ? THEN 1 ELSE 0 END), 0) AS active_count,
			COALESCE(SUM(CASE WHEN o.status IN ? THEN 0 ELSE 1 END), 0) AS inactive_count
		 FROM %s o
		 WHERE o.type = ? AND o.status NOT IN ?
		 GROUP BY COALESCE(o.payment_method, '')
		 ORDER BY payment_method ASC`, r.t.Orders)

	var rows []telemetrydomain.PaymentMethodRow
	err := db.WithContext(ctx).Raw(query,
		storage.ActiveStatuses(), storage.ActiveStatuses(),
		storage.TypeSubscription, storage.IgnoredStatuses(),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ordersTableRepo) StatusCounts(ctx context.Context, db *gorm.DB) ([]telemetrydomain.StatusRow, error) {
	query := fmt.Sprintf(`SELECT o.status AS status, COUNT(o.id) AS count
		 FROM %s o
		 WHERE o.type = ? AND o.status NOT IN ?
		 GROUP BY o.status
		 ORDER BY status ASC`, r.t.Orders)

	var rows []telemetrydomain.StatusRow
	err := db.WithContext(ctx).
		Raw(query, storage.TypeSubscription, storage.IgnoredStatuses()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
