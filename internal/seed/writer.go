package seed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownRef  = errors.New("seed_unknown_ref")
	ErrUnknownKind = errors.New("seed_unknown_order_kind")
)

const markerValue = "1"

type writer struct {
	tx     *gorm.DB
	schema storage.Schema
	t      storage.Tables
	node   *snowflake.Node

	refs  map[string]int64
	terms map[string]int64
}

// Write stores the dataset in one transaction using the given layout.
func Write(ctx context.Context, db *gorm.DB, schema storage.Schema, t storage.Tables, ds Dataset) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := &writer{
			tx:     tx,
			schema: schema,
			t:      t,
			node:   node,
			refs:   map[string]int64{},
			terms:  map[string]int64{},
		}
		for _, o := range ds.Orders {
			if err := w.order(o); err != nil {
				return fmt.Errorf("order %q: %w", o.Ref, err)
			}
		}
		for _, s := range ds.Subscriptions {
			if err := w.subscription(s); err != nil {
				return fmt.Errorf("subscription %q: %w", s.Ref, err)
			}
		}
		if len(ds.Products) > 0 {
			if err := w.productTypes(); err != nil {
				return err
			}
		}
		for _, p := range ds.Products {
			if err := w.product(p); err != nil {
				return fmt.Errorf("product %q: %w", p.Ref, err)
			}
		}
		for name, value := range ds.Options {
			if err := w.option(name, value); err != nil {
				return fmt.Errorf("option %q: %w", name, err)
			}
		}
		return nil
	})
}

func (w *writer) id(ref string) int64 {
	id := w.node.Generate().Int64()
	if ref != "" {
		w.refs[ref] = id
	}
	return id
}

func (w *writer) lookup(ref string) (int64, error) {
	if ref == "" {
		return 0, nil
	}
	id, ok := w.refs[ref]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}
	return id, nil
}

func (w *writer) order(o Order) error {
	marker, err := markerKey(o.Kind)
	if err != nil {
		return err
	}
	total, err := parseTotal(o.Total)
	if err != nil {
		return err
	}
	status := defaultString(o.Status, storage.StatusCompleted)
	id := w.id(o.Ref)

	meta := map[string]string{}
	if marker != "" {
		meta[marker] = markerValue
	}

	if w.schema == storage.SchemaOrders {
		row := storage.Order{
			ID:             id,
			Type:           storage.TypeOrder,
			Status:         status,
			Currency:       "USD",
			CustomerID:     o.CustomerID,
			TotalAmount:    total,
			PaymentMethod:  o.PaymentMethod,
			DateCreatedGMT: o.Created.UTC(),
		}
		if err := w.tx.Table(w.t.Orders).Create(&row).Error; err != nil {
			return err
		}
	} else {
		row := storage.Post{
			ID:          id,
			PostType:    storage.TypeOrder,
			PostStatus:  status,
			PostDateGMT: o.Created.UTC(),
		}
		if err := w.tx.Table(w.t.Posts).Create(&row).Error; err != nil {
			return err
		}
		meta[storage.MetaOrderTotal] = total.StringFixed(2)
		meta[storage.MetaPaymentMethod] = o.PaymentMethod
		meta[storage.MetaCustomerUser] = strconv.FormatInt(o.CustomerID, 10)
	}
	if err := w.meta(id, meta); err != nil {
		return err
	}

	if o.Quantity > 0 {
		return w.lineItem(id, o.Quantity)
	}
	return nil
}

func (w *writer) lineItem(orderID int64, qty int) error {
	item := storage.OrderItem{
		OrderItemID:   w.id(""),
		OrderID:       orderID,
		OrderItemType: storage.ItemTypeLineItem,
	}
	if err := w.tx.Table(w.t.OrderItems).Create(&item).Error; err != nil {
		return err
	}
	meta := storage.OrderItemMeta{
		MetaID:      w.id(""),
		OrderItemID: item.OrderItemID,
		MetaKey:     storage.MetaItemQty,
		MetaValue:   strconv.Itoa(qty),
	}
	return w.tx.Table(w.t.OrderItemMeta).Create(&meta).Error
}

func (w *writer) subscription(s Subscription) error {
	parentID, err := w.lookup(s.ParentRef)
	if err != nil {
		return err
	}
	status := defaultString(s.Status, storage.StatusActive)
	id := w.id(s.Ref)

	meta := map[string]string{}
	if s.BillingPeriod != "" {
		meta[storage.MetaBillingPeriod] = s.BillingPeriod
	}
	if s.BillingInterval != "" {
		meta[storage.MetaBillingIntvl] = s.BillingInterval
	}
	if s.ManualRenewal != "" {
		meta[storage.MetaManualRenewal] = s.ManualRenewal
	}

	if w.schema == storage.SchemaOrders {
		row := storage.Order{
			ID:             id,
			Type:           storage.TypeSubscription,
			Status:         status,
			Currency:       "USD",
			CustomerID:     s.CustomerID,
			TotalAmount:    decimal.Zero,
			PaymentMethod:  s.PaymentMethod,
			ParentOrderID:  parentID,
			DateCreatedGMT: s.Created.UTC(),
		}
		if err := w.tx.Table(w.t.Orders).Create(&row).Error; err != nil {
			return err
		}
	} else {
		row := storage.Post{
			ID:          id,
			PostType:    storage.TypeSubscription,
			PostStatus:  status,
			PostParent:  parentID,
			PostDateGMT: s.Created.UTC(),
		}
		if err := w.tx.Table(w.t.Posts).Create(&row).Error; err != nil {
			return err
		}
		meta[storage.MetaPaymentMethod] = s.PaymentMethod
		meta[storage.MetaCustomerUser] = strconv.FormatInt(s.CustomerID, 10)
	}
	return w.meta(id, meta)
}

func (w *writer) product(p Product) error {
	parentID, err := w.lookup(p.ParentRef)
	if err != nil {
		return err
	}
	status := defaultString(p.Status, storage.PostStatusPublish)
	id := w.id(p.Ref)

	if w.schema == storage.SchemaOrders {
		row := storage.Product{
			ID:                         id,
			ParentID:                   parentID,
			Status:                     status,
			SubscriptionPeriod:         p.Period,
			SubscriptionPeriodInterval: p.Interval,
			Gifting:                    p.Gifting,
		}
		if err := w.tx.Table(w.t.Products).Create(&row).Error; err != nil {
			return err
		}
	} else {
		postType := storage.TypeProduct
		if parentID != 0 {
			postType = storage.TypeProductVariation
		}
		row := storage.Post{
			ID:         id,
			PostType:   postType,
			PostStatus: status,
			PostParent: parentID,
		}
		if err := w.tx.Table(w.t.Posts).Create(&row).Error; err != nil {
			return err
		}
		meta := map[string]string{}
		if p.Period != "" {
			meta[storage.MetaProductPeriod] = p.Period
		}
		if p.Interval != "" {
			meta[storage.MetaProductInterval] = p.Interval
		}
		if p.Gifting != "" {
			meta[storage.MetaProductGifting] = p.Gifting
		}
		if err := w.meta(id, meta); err != nil {
			return err
		}
	}

	if p.Type == "" {
		return nil
	}
	taxonomyID, err := w.productType(p.Type)
	if err != nil {
		return err
	}
	rel := storage.TermRelationship{ObjectID: id, TermTaxonomyID: taxonomyID}
	return w.tx.Table(w.t.TermRelationships).Create(&rel).Error
}

// productTypes registers the subscription product types the way a store
// with the extension installed always has them.
func (w *writer) productTypes() error {
	for _, slug := range []string{storage.TermSubscription, storage.TermVariableSubscription} {
		if _, err := w.productType(slug); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) productType(slug string) (int64, error) {
	if id, ok := w.terms[slug]; ok {
		return id, nil
	}
	term := storage.Term{TermID: w.id(""), Name: slug, Slug: slug}
	if err := w.tx.Table(w.t.Terms).Create(&term).Error; err != nil {
		return 0, err
	}
	taxonomy := storage.TermTaxonomy{
		TermTaxonomyID: w.id(""),
		TermID:         term.TermID,
		Taxonomy:       storage.TaxonomyProductType,
	}
	if err := w.tx.Table(w.t.TermTaxonomy).Create(&taxonomy).Error; err != nil {
		return 0, err
	}
	w.terms[slug] = taxonomy.TermTaxonomyID
	return taxonomy.TermTaxonomyID, nil
}

func (w *writer) meta(ownerID int64, values map[string]string) error {
	for key, value := range values {
		var err error
		if w.schema == storage.SchemaOrders {
			row := storage.OrderMeta{ID: w.id(""), OrderID: ownerID, MetaKey: key, MetaValue: value}
			err = w.tx.Table(w.t.OrdersMeta).Create(&row).Error
		} else {
			row := storage.PostMeta{MetaID: w.id(""), PostID: ownerID, MetaKey: key, MetaValue: value}
			err = w.tx.Table(w.t.PostMeta).Create(&row).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) option(name, value string) error {
	row := storage.Option{OptionName: name, OptionValue: value}
	return w.tx.Table(w.t.Options).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "option_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_value"}),
		}).
		Create(&row).Error
}

func markerKey(kind string) (string, error) {
	switch kind {
	case "":
		return "", nil
	case "renewal":
		return storage.MetaRenewal, nil
	case "switch":
		return storage.MetaSwitch, nil
	case "resubscribe":
		return storage.MetaResubscribe, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func parseTotal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
