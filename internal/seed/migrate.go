package seed

import (
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"gorm.io/gorm"
)

// CreateTables creates every store table of both layouts. Stores already own
// these tables in production; this is for local databases and tests.
func CreateTables(db *gorm.DB, t storage.Tables) error {
	tables := []struct {
		name  string
		model any
	}{
		{t.Orders, &storage.Order{}},
		{t.OrdersMeta, &storage.OrderMeta{}},
		{t.Products, &storage.Product{}},
		{t.Posts, &storage.Post{}},
		{t.PostMeta, &storage.PostMeta{}},
		{t.OrderItems, &storage.OrderItem{}},
		{t.OrderItemMeta, &storage.OrderItemMeta{}},
		{t.Terms, &storage.Term{}},
		{t.TermTaxonomy, &storage.TermTaxonomy{}},
		{t.TermRelationships, &storage.TermRelationship{}},
		{t.Options, &storage.Option{}},
	}
	for _, table := range tables {
		if err := db.Table(table.name).AutoMigrate(table.model); err != nil {
			return err
		}
	}
	return nil
}
