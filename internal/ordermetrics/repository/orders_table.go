package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"github.com/railzwaylabs/subtelemetry/pkg/db/dialect"
	"gorm.io/gorm"
)

// ordersTableRepo reads the dedicated order tables.
type ordersTableRepo struct {
	t storage.Tables
}

func (r *ordersTableRepo) kindFilter(kind domain.OrderType) (string, []any, error) {
	if kind == domain.OrderTypeInitial {
		return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s s WHERE s.type = ? AND s.parent_order_id = o.id)`, r.t.Orders),
			[]any{storage.TypeSubscription}, nil
	}
	key, err := kind.MetaKey()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s m WHERE m.order_id = o.id AND m.meta_key = ?)`, r.t.OrdersMeta),
		[]any{key}, nil
}

func (r *ordersTableRepo) anyKindFilter() (string, []any) {
	return fmt.Sprintf(`(EXISTS (SELECT 1 FROM %s s WHERE s.type = ? AND s.parent_order_id = o.id)
			OR EXISTS (SELECT 1 FROM %s m WHERE m.order_id = o.id AND m.meta_key IN ?))`, r.t.Orders, r.t.OrdersMeta),
		[]any{storage.TypeSubscription, domain.RelationMetaKeys()}
}

func (r *ordersTableRepo) TypeTotals(ctx context.Context, db *gorm.DB, w timewindow.Window, kind domain.OrderType) ([]telemetrydomain.TypeRow, error) {
	filter, filterArgs, err := r.kindFilter(kind)
	if err != nil {
		return nil, err
	}
	month := dialect.MonthBucket(db, "o.date_created_gmt")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COUNT(o.id) AS count,
			COALESCE(SUM(o.total_amount), 0) AS gross,
			COALESCE(SUM(CASE WHEN o.total_amount > 0 THEN 1 ELSE 0 END), 0) AS non_zero_count
		 FROM %[2]s o
		 WHERE o.type = ? AND o.status NOT IN ?
		   AND o.date_created_gmt >= ? AND o.date_created_gmt < ?
		   AND %[3]s
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, r.t.Orders, filter)

	args := append([]any{storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until()}, filterArgs...)

	var rows []telemetrydomain.TypeRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ordersTableRepo) InitialQuantities(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.QuantityRow, error) {
	filter, filterArgs, err := r.kindFilter(domain.OrderTypeInitial)
	if err != nil {
		return nil, err
	}
	month := dialect.MonthBucket(db, "o.date_created_gmt")
	qty := dialect.Integer(db, "im.meta_value")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COALESCE(SUM(%[2]s), 0) AS quantity,
			COALESCE(SUM(CASE WHEN o.total_amount > 0 THEN %[2]s ELSE 0 END), 0) AS non_zero_quantity
		 FROM %[3]s o
		 JOIN %[4]s i ON i.order_id = o.id AND i.order_item_type = ?
		 JOIN %[5]s im ON im.order_item_id = i.order_item_id AND im.meta_key = ?
		 WHERE o.type = ? AND o.status NOT IN ?
		   AND o.date_created_gmt >= ? AND o.date_created_gmt < ?
		   AND %[6]s
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, qty, r.t.Orders, r.t.OrderItems, r.t.OrderItemMeta, filter)

	args := append([]any{
		storage.ItemTypeLineItem, storage.MetaItemQty,
		storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until(),
	}, filterArgs...)

	var rows []telemetrydomain.QuantityRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ordersTableRepo) GatewayTotals(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.GatewayRow, error) {
	filter, filterArgs := r.anyKindFilter()
	month := dialect.MonthBucket(db, "o.date_created_gmt")

	query := fmt.Sprintf(`SELECT COALESCE(o.payment_method, '') AS gateway,
			%[1]s AS month,
			COUNT(o.id) AS count,
			COALESCE(SUM(o.total_amount), 0) AS gross
		 FROM %[2]s o
		 WHERE o.type = ? AND o.status NOT IN ?
		   AND o.date_created_gmt >= ? AND o.date_created_gmt < ?
		   AND %[3]s
		 GROUP BY COALESCE(o.payment_method, ''), %[1]s
		 ORDER BY gateway ASC, month ASC`, month, r.t.Orders, filter)

	args := append([]any{storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until()}, filterArgs...)

	var rows []telemetrydomain.GatewayRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ordersTableRepo) StoreGMV(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.VolumeRow, error) {
	month := dialect.MonthBucket(db, "o.date_created_gmt")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COUNT(o.id) AS count,
			COALESCE(SUM(o.total_amount), 0) AS gross
		 FROM %[2]s o
		 WHERE o.type = ? AND o.status IN ?
		   AND o.date_created_gmt >= ? AND o.date_created_gmt < ?
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, r.t.Orders)

	var rows []telemetrydomain.VolumeRow
	err := db.WithContext(ctx).Raw(query, storage.TypeOrder, storage.PaidStatuses(), w.Start, w.Until()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
