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

// postsTableRepo reads orders stored as generic entities. Totals and payment
// methods live in the meta table and are joined in per query.
type postsTableRepo struct {
	t storage.Tables
}

func (r *postsTableRepo) kindFilter(kind domain.OrderType) (string, []any, error) {
	if kind == domain.OrderTypeInitial {
		return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s s WHERE s.post_type = ? AND s.post_parent = p.id)`, r.t.Posts),
			[]any{storage.TypeSubscription}, nil
	}
	key, err := kind.MetaKey()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s m WHERE m.post_id = p.id AND m.meta_key = ?)`, r.t.PostMeta),
		[]any{key}, nil
}

func (r *postsTableRepo) anyKindFilter() (string, []any) {
	return fmt.Sprintf(`(EXISTS (SELECT 1 FROM %s s WHERE s.post_type = ? AND s.post_parent = p.id)
			OR EXISTS (SELECT 1 FROM %s m WHERE m.post_id = p.id AND m.meta_key IN ?))`, r.t.Posts, r.t.PostMeta),
		[]any{storage.TypeSubscription, domain.RelationMetaKeys()}
}

func (r *postsTableRepo) TypeTotals(ctx context.Context, db *gorm.DB, w timewindow.Window, kind domain.OrderType) ([]telemetrydomain.TypeRow, error) {
	filter, filterArgs, err := r.kindFilter(kind)
	if err != nil {
		return nil, err
	}
	month := dialect.MonthBucket(db, "p.post_date_gmt")
	total := dialect.Numeric(db, "tm.meta_value")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COUNT(p.id) AS count,
			COALESCE(SUM(%[2]s), 0) AS gross,
			COALESCE(SUM(CASE WHEN %[2]s > 0 THEN 1 ELSE 0 END), 0) AS non_zero_count
		 FROM %[3]s p
		 LEFT JOIN %[4]s tm ON tm.post_id = p.id AND tm.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status NOT IN ?
		   AND p.post_date_gmt >= ? AND p.post_date_gmt < ?
		   AND %[5]s
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, total, r.t.Posts, r.t.PostMeta, filter)

	args := append([]any{
		storage.MetaOrderTotal,
		storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until(),
	}, filterArgs...)

	var rows []telemetrydomain.TypeRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) InitialQuantities(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.QuantityRow, error) {
	filter, filterArgs, err := r.kindFilter(domain.OrderTypeInitial)
	if err != nil {
		return nil, err
	}
	month := dialect.MonthBucket(db, "p.post_date_gmt")
	total := dialect.Numeric(db, "tm.meta_value")
	qty := dialect.Integer(db, "im.meta_value")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COALESCE(SUM(%[2]s), 0) AS quantity,
			COALESCE(SUM(CASE WHEN %[3]s > 0 THEN %[2]s ELSE 0 END), 0) AS non_zero_quantity
		 FROM %[4]s p
		 JOIN %[5]s i ON i.order_id = p.id AND i.order_item_type = ?
		 JOIN %[6]s im ON im.order_item_id = i.order_item_id AND im.meta_key = ?
		 LEFT JOIN %[7]s tm ON tm.post_id = p.id AND tm.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status NOT IN ?
		   AND p.post_date_gmt >= ? AND p.post_date_gmt < ?
		   AND %[8]s
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, qty, total, r.t.Posts, r.t.OrderItems, r.t.OrderItemMeta, r.t.PostMeta, filter)

	args := append([]any{
		storage.ItemTypeLineItem, storage.MetaItemQty, storage.MetaOrderTotal,
		storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until(),
	}, filterArgs...)

	var rows []telemetrydomain.QuantityRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) GatewayTotals(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.GatewayRow, error) {
	filter, filterArgs := r.anyKindFilter()
	month := dialect.MonthBucket(db, "p.post_date_gmt")
	total := dialect.Numeric(db, "tm.meta_value")

	query := fmt.Sprintf(`SELECT COALESCE(pm.meta_value, '') AS gateway,
			%[1]s AS month,
			COUNT(p.id) AS count,
			COALESCE(SUM(%[2]s), 0) AS gross
		 FROM %[3]s p
		 LEFT JOIN %[4]s tm ON tm.post_id = p.id AND tm.meta_key = ?
		 LEFT JOIN %[4]s pm ON pm.post_id = p.id AND pm.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status NOT IN ?
		   AND p.post_date_gmt >= ? AND p.post_date_gmt < ?
		   AND %[5]s
		 GROUP BY COALESCE(pm.meta_value, ''), %[1]s
		 ORDER BY gateway ASC, month ASC`, month, total, r.t.Posts, r.t.PostMeta, filter)

	args := append([]any{
		storage.MetaOrderTotal, storage.MetaPaymentMethod,
		storage.TypeOrder, storage.IgnoredStatuses(), w.Start, w.Until(),
	}, filterArgs...)

	var rows []telemetrydomain.GatewayRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postsTableRepo) StoreGMV(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.VolumeRow, error) {
	month := dialect.MonthBucket(db, "p.post_date_gmt")
	total := dialect.Numeric(db, "tm.meta_value")

	query := fmt.Sprintf(`SELECT %[1]s AS month,
			COUNT(p.id) AS count,
			COALESCE(SUM(%[2]s), 0) AS gross
		 FROM %[3]s p
		 LEFT JOIN %[4]s tm ON tm.post_id = p.id AND tm.meta_key = ?
		 WHERE p.post_type = ? AND p.post_status IN ?
		   AND p.post_date_gmt >= ? AND p.post_date_gmt < ?
		 GROUP BY %[1]s
		 ORDER BY month ASC`, month, total, r.t.Posts, r.t.PostMeta)

	var rows []telemetrydomain.VolumeRow
	err := db.WithContext(ctx).
		Raw(query, storage.MetaOrderTotal, storage.TypeOrder, storage.PaidStatuses(), w.Start, w.Until()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
