package domain

import (
	"context"
	"errors"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
)

type Service interface {
	Trends(ctx context.Context, w timewindow.Window) (telemetrydomain.OrderTrends, error)
}

// OrderType classifies subscription related orders. The kinds are disjoint:
// an order carries at most one relationship marker, and initial orders carry none.
type OrderType string

const (
	OrderTypeInitial     OrderType = "initial"
	OrderTypeRenewal     OrderType = "renewal"
	OrderTypeSwitch      OrderType = "switch"
	OrderTypeResubscribe OrderType = "resubscribe"
)

var ErrInvalidOrderType = errors.New("invalid_order_type")

// MetaKey returns the relationship marker for follow-up order kinds.
func (t OrderType) MetaKey() (string, error) {
	switch t {
	case OrderTypeRenewal:
		return storage.MetaRenewal, nil
	case OrderTypeSwitch:
		return storage.MetaSwitch, nil
	case OrderTypeResubscribe:
		return storage.MetaResubscribe, nil
	default:
		return "", ErrInvalidOrderType
	}
}

// RelationMetaKeys lists every follow-up marker.
func RelationMetaKeys() []string {
	return []string{storage.MetaRenewal, storage.MetaSwitch, storage.MetaResubscribe}
}
