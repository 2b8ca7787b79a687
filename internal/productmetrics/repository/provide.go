package repository

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/subtelemetry/internal/productmetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Schema storage.Schema
	Tables storage.Tables
}

func Provide(p Params) domain.Repository {
	return New(p.Schema, p.Tables)
}

func New(schema storage.Schema, tables storage.Tables) domain.Repository {
	if schema == storage.SchemaOrders {
		return &productsTableRepo{termResolver{t: tables}}
	}
	return &postsTableRepo{termResolver{t: tables}}
}

// termResolver reads the taxonomy tables, which both layouts share.
type termResolver struct {
	t storage.Tables
}

func (r termResolver) ProductTypeTerms(ctx context.Context, db *gorm.DB) (domain.TypeTerms, error) {
	var rows []struct {
		Slug           string
		TermTaxonomyID int64
	}
	query := fmt.Sprintf(`SELECT t.slug AS slug, tt.term_taxonomy_id AS term_taxonomy_id
		 FROM %s t
		 JOIN %s tt ON tt.term_id = t.term_id AND tt.taxonomy = ?
		 WHERE t.slug IN ?`, r.t.Terms, r.t.TermTaxonomy)

	err := db.WithContext(ctx).
		Raw(query, storage.TaxonomyProductType, []string{storage.TermSubscription, storage.TermVariableSubscription}).
		Scan(&rows).Error
	if err != nil {
		return domain.TypeTerms{}, err
	}

	var terms domain.TypeTerms
	for _, row := range rows {
		switch row.Slug {
		case storage.TermSubscription:
			terms.Subscription = row.TermTaxonomyID
		case storage.TermVariableSubscription:
			terms.VariableSubscription = row.TermTaxonomyID
		}
	}
	return terms, nil
}

func (r termResolver) hasTerm(object string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s tr WHERE tr.object_id = %s AND tr.term_taxonomy_id = ?)`,
		r.t.TermRelationships, object)
}

func (r termResolver) hasAnyTerm(object string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM %s tr WHERE tr.object_id = %s AND tr.term_taxonomy_id IN ?)`,
		r.t.TermRelationships, object)
}
