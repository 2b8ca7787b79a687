package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// The models below mirror the store tables closely enough to create and seed
// them. Table names are always passed explicitly because they carry the
// store's prefix.

type Order struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement:false"`
	Type           string          `gorm:"column:type;type:varchar(20);index"`
	Status         string          `gorm:"column:status;type:varchar(20);index"`
	Currency       string          `gorm:"column:currency;type:varchar(10)"`
	CustomerID     int64           `gorm:"column:customer_id;index"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(26,8)"`
	PaymentMethod  string          `gorm:"column:payment_method;type:varchar(100)"`
	ParentOrderID  int64           `gorm:"column:parent_order_id;index"`
	DateCreatedGMT time.Time       `gorm:"column:date_created_gmt;index"`
}

type OrderMeta struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	OrderID   int64  `gorm:"column:order_id;index"`
	MetaKey   string `gorm:"column:meta_key;type:varchar(255);index"`
	MetaValue string `gorm:"column:meta_value;type:text"`
}

type Product struct {
	ID                         int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	ParentID                   int64  `gorm:"column:parent_id;index"`
	Status                     string `gorm:"column:status;type:varchar(20)"`
	SubscriptionPeriod         string `gorm:"column:subscription_period;type:varchar(10)"`
	SubscriptionPeriodInterval string `gorm:"column:subscription_period_interval;type:varchar(10)"`
	Gifting                    string `gorm:"column:gifting;type:varchar(20)"`
}

type Post struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false"`
	PostType    string    `gorm:"column:post_type;type:varchar(20);index"`
	PostStatus  string    `gorm:"column:post_status;type:varchar(20)"`
	PostParent  int64     `gorm:"column:post_parent;index"`
	PostDateGMT time.Time `gorm:"column:post_date_gmt"`
}

type PostMeta struct {
	MetaID    int64  `gorm:"column:meta_id;primaryKey;autoIncrement:false"`
	PostID    int64  `gorm:"column:post_id;index"`
	MetaKey   string `gorm:"column:meta_key;type:varchar(255);index"`
	MetaValue string `gorm:"column:meta_value;type:text"`
}

type OrderItem struct {
	OrderItemID   int64  `gorm:"column:order_item_id;primaryKey;autoIncrement:false"`
	OrderID       int64  `gorm:"column:order_id;index"`
	OrderItemType string `gorm:"column:order_item_type;type:varchar(200)"`
}

type OrderItemMeta struct {
	MetaID      int64  `gorm:"column:meta_id;primaryKey;autoIncrement:false"`
	OrderItemID int64  `gorm:"column:order_item_id;index"`
	MetaKey     string `gorm:"column:meta_key;type:varchar(255)"`
	MetaValue   string `gorm:"column:meta_value;type:text"`
}

type Term struct {
	TermID int64  `gorm:"column:term_id;primaryKey;autoIncrement:false"`
	Name   string `gorm:"column:name;type:varchar(200)"`
	Slug   string `gorm:"column:slug;type:varchar(200)"`
}

type TermTaxonomy struct {
	TermTaxonomyID int64  `gorm:"column:term_taxonomy_id;primaryKey;autoIncrement:false"`
	TermID         int64  `gorm:"column:term_id"`
	Taxonomy       string `gorm:"column:taxonomy;type:varchar(32)"`
}

type TermRelationship struct {
	ObjectID       int64 `gorm:"column:object_id;primaryKey;autoIncrement:false"`
	TermTaxonomyID int64 `gorm:"column:term_taxonomy_id;primaryKey;autoIncrement:false"`
}

type Option struct {
	OptionName  string `gorm:"column:option_name;primaryKey;type:varchar(191)"`
	OptionValue string `gorm:"column:option_value;type:text"`
}
