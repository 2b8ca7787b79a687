package domain

import (
	"context"

	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
	"gorm.io/gorm"
)

// Repository runs the order aggregations against one storage layout. Every
// method is a read; rows come back grouped by month in ascending order.
type Repository interface {
	// TypeTotals counts orders of one kind per month with their gross and the
	// number of orders with a positive total.
	TypeTotals(ctx context.Context, db *gorm.DB, w timewindow.Window, kind OrderType) ([]telemetrydomain.TypeRow, error)
	// InitialQuantities sums line item quantities of initial orders per month.
	InitialQuantities(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.QuantityRow, error)
	// GatewayTotals groups every subscription related order by payment method and month.
	GatewayTotals(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.GatewayRow, error)
	// StoreGMV aggregates all paid store orders per month.
	StoreGMV(ctx context.Context, db *gorm.DB, w timewindow.Window) ([]telemetrydomain.VolumeRow, error)
}
