// Package storage describes the two physical layouts a store may keep its
// orders and subscriptions in while it migrates between them.
//
// SchemaOrders keeps orders and subscriptions in dedicated order tables with
// typed columns plus an order meta table. SchemaPosts keeps them as generic
// entities with every attribute in a key/value meta table.
package storage

import (
	"github.com/railzwaylabs/subtelemetry/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("storage",
	fx.Provide(ProvideSchema),
	fx.Provide(ProvideTables),
)

type Schema string

const (
	SchemaOrders Schema = "orders"
	SchemaPosts  Schema = "posts"
)

func SchemaFromFlag(customOrdersTable bool) Schema {
	if customOrdersTable {
		return SchemaOrders
	}
	return SchemaPosts
}

func ProvideSchema(cfg config.Config) Schema {
	return SchemaFromFlag(cfg.Storage.CustomOrdersTable)
}

// Tables holds fully prefixed table names.
type Tables struct {
	Orders            string
	OrdersMeta        string
	Products          string
	Posts             string
	PostMeta          string
	OrderItems        string
	OrderItemMeta     string
	Terms             string
	TermTaxonomy      string
	TermRelationships string
	Options           string
}

func NewTables(prefix string) Tables {
	return Tables{
		Orders:            prefix + "wc_orders",
		OrdersMeta:        prefix + "wc_orders_meta",
		Products:          prefix + "wc_products",
		Posts:             prefix + "posts",
		PostMeta:          prefix + "postmeta",
		OrderItems:        prefix + "woocommerce_order_items",
		OrderItemMeta:     prefix + "woocommerce_order_itemmeta",
		Terms:             prefix + "terms",
		TermTaxonomy:      prefix + "term_taxonomy",
		TermRelationships: prefix + "term_relationships",
		Options:           prefix + "options",
	}
}

func ProvideTables(cfg config.Config) Tables {
	return NewTables(cfg.DB.TablePrefix)
}

// Entity types.
const (
	TypeOrder            = "shop_order"
	TypeSubscription     = "shop_subscription"
	TypeProduct          = "product"
	TypeProductVariation = "product_variation"
)

// Meta keys shared by both layouts.
const (
	MetaRenewal       = "_subscription_renewal"
	MetaSwitch        = "_subscription_switch"
	MetaResubscribe   = "_subscription_resubscribe"
	MetaBillingPeriod = "_billing_period"
	MetaBillingIntvl  = "_billing_interval"
	MetaManualRenewal = "_requires_manual_renewal"
	MetaItemQty       = "_qty"
)

// Meta keys only the entity layout uses; the order tables hold these as columns.
const (
	MetaOrderTotal    = "_order_total"
	MetaPaymentMethod = "_payment_method"
	MetaCustomerUser  = "_customer_user"
)

// Product meta keys.
const (
	MetaProductPeriod   = "_subscription_period"
	MetaProductInterval = "_subscription_period_interval"
	MetaProductGifting  = "_subscription_gifting"
)

const (
	ItemTypeLineItem = "line_item"

	TaxonomyProductType      = "product_type"
	TermSubscription         = "subscription"
	TermVariableSubscription = "variable-subscription"

	PostStatusPublish = "publish"
)

// Order and subscription statuses.
const (
	StatusProcessing    = "wc-processing"
	StatusCompleted     = "wc-completed"
	StatusActive        = "wc-active"
	StatusPendingCancel = "wc-pending-cancel"
	StatusCancelled     = "wc-cancelled"
	StatusOnHold        = "wc-on-hold"
	StatusExpired       = "wc-expired"
)

// PaidStatuses counts towards store-wide gross merchandise value.
func PaidStatuses() []string {
	return []string{StatusCompleted, StatusProcessing}
}

// ActiveStatuses are the statuses a subscription is considered live in.
func ActiveStatuses() []string {
	return []string{StatusActive, StatusPendingCancel}
}

// IgnoredStatuses never count towards any metric.
func IgnoredStatuses() []string {
	return []string{"trash", "auto-draft", "draft", "wc-checkout-draft"}
}
