package repository

import (
	"github.com/railzwaylabs/subtelemetry/internal/ordermetrics/domain"
	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Schema storage.Schema
	Tables storage.Tables
}

// Provide resolves the adapter once from the storage flag.
func Provide(p Params) domain.Repository {
	return New(p.Schema, p.Tables)
}

func New(schema storage.Schema, tables storage.Tables) domain.Repository {
	if schema == storage.SchemaOrders {
		return &ordersTableRepo{t: tables}
	}
	return &postsTableRepo{t: tables}
}
