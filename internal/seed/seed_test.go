package seed_test

import (
	"testing"
	"time"

	"github.com/railzwaylabs/subtelemetry/internal/seed"
	"github.com/railzwaylabs/subtelemetry/internal/seed/seedtest"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOrdersLayout(t *testing.T) {
	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	db := seedtest.OpenWith(t, storage.SchemaOrders, seed.Dataset{
		Orders: []seed.Order{
			{Ref: "o1", Created: created, Total: "10.00", PaymentMethod: "stripe", CustomerID: 7, Quantity: 2},
			{Created: created, Total: "4.50", Kind: "renewal"},
		},
		Subscriptions: []seed.Subscription{
			{ParentRef: "o1", CustomerID: 7, BillingPeriod: "month", BillingInterval: "1"},
		},
	})
	tables := seedtest.Tables()

	var orders []storage.Order
	require.NoError(t, db.Table(tables.Orders).Order("date_created_gmt, type").Find(&orders).Error)
	require.Len(t, orders, 3)

	var sub storage.Order
	require.NoError(t, db.Table(tables.Orders).Where("type = ?", storage.TypeSubscription).First(&sub).Error)
	var parent storage.Order
	require.NoError(t, db.Table(tables.Orders).Where("id = ?", sub.ParentOrderID).First(&parent).Error)
	assert.Equal(t, "stripe", parent.PaymentMethod)
	assert.Equal(t, "10", parent.TotalAmount.String())

	var markers int64
	require.NoError(t, db.Table(tables.OrdersMeta).Where("meta_key = ?", storage.MetaRenewal).Count(&markers).Error)
	assert.EqualValues(t, 1, markers)

	var qty storage.OrderItemMeta
	require.NoError(t, db.Table(tables.OrderItemMeta).Where("meta_key = ?", storage.MetaItemQty).First(&qty).Error)
	assert.Equal(t, "2", qty.MetaValue)
}

func TestWritePostsLayout(t *testing.T) {
	db := seedtest.OpenWith(t, storage.SchemaPosts, seed.Dataset{
		Orders: []seed.Order{
			{Ref: "o1", Created: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), Total: "10", PaymentMethod: "paypal"},
		},
		Subscriptions: []seed.Subscription{{ParentRef: "o1", BillingPeriod: "year", BillingInterval: "1"}},
		Products: []seed.Product{
			{Ref: "box", Type: storage.TermVariableSubscription},
			{ParentRef: "box", Period: "week", Interval: "2"},
		},
	})
	tables := seedtest.Tables()

	var total storage.PostMeta
	require.NoError(t, db.Table(tables.PostMeta).Where("meta_key = ?", storage.MetaOrderTotal).First(&total).Error)
	assert.Equal(t, "10.00", total.MetaValue)

	var variations int64
	require.NoError(t, db.Table(tables.Posts).Where("post_type = ?", storage.TypeProductVariation).Count(&variations).Error)
	assert.EqualValues(t, 1, variations)

	var rels int64
	require.NoError(t, db.Table(tables.TermRelationships).Count(&rels).Error)
	assert.EqualValues(t, 1, rels, "variations inherit their type from the parent")
}

func TestWriteRejectsUnknownRefs(t *testing.T) {
	db := seedtest.Open(t)
	err := seed.Write(t.Context(), db, storage.SchemaOrders, seedtest.Tables(), seed.Dataset{
		Subscriptions: []seed.Subscription{{ParentRef: "missing"}},
	})
	assert.ErrorIs(t, err, seed.ErrUnknownRef)

	var n int64
	require.NoError(t, db.Table(seedtest.Tables().Orders).Count(&n).Error)
	assert.Zero(t, n)
}

func TestWriteRejectsUnknownKind(t *testing.T) {
	db := seedtest.Open(t)
	err := seed.Write(t.Context(), db, storage.SchemaPosts, seedtest.Tables(), seed.Dataset{
		Orders: []seed.Order{{Kind: "refund"}},
	})
	assert.ErrorIs(t, err, seed.ErrUnknownKind)
}

func TestWriteOptionsUpsert(t *testing.T) {
	db := seedtest.Open(t)
	tables := seedtest.Tables()
	for _, value := range []string{"no", "yes"} {
		require.NoError(t, seed.Write(t.Context(), db, storage.SchemaOrders, tables, seed.Dataset{
			Options: map[string]string{"woocommerce_subscriptions_gifting_enabled": value},
		}))
	}

	var opt storage.Option
	require.NoError(t, db.Table(tables.Options).First(&opt).Error)
	assert.Equal(t, "yes", opt.OptionValue)
}

func TestDemoIsWritableInBothLayouts(t *testing.T) {
	ds := seed.Demo(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	for _, schema := range seedtest.Schemas() {
		t.Run(string(schema), func(t *testing.T) {
			db := seedtest.OpenWith(t, schema, ds)
			require.NotNil(t, db)
		})
	}
}
