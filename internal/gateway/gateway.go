// Package gateway is the registry of payment gateways enabled on the store
// and the capabilities each one declares.
package gateway

import "errors"

// Features a gateway may declare.
const (
	FeatureSubscriptions     = "subscriptions"
	FeatureScheduledPayments = "gateway_scheduled_payments"
)

var ErrUnknownGateway = errors.New("unknown_gateway")

type Gateway interface {
	ID() string
	Supports(feature string) bool
}

// Factory builds a gateway for the registry. Factories exist for every
// gateway the service knows; only enabled ones are instantiated.
type Factory interface {
	ID() string
	New() Gateway
}

type staticGateway struct {
	id       string
	features map[string]struct{}
}

func (g *staticGateway) ID() string {
	return g.id
}

func (g *staticGateway) Supports(feature string) bool {
	_, ok := g.features[feature]
	return ok
}

type staticFactory struct {
	id       string
	features []string
}

// NewFactory returns a factory for a gateway with a fixed feature set.
func NewFactory(id string, features ...string) Factory {
	return &staticFactory{id: id, features: features}
}

func (f *staticFactory) ID() string {
	return f.id
}

func (f *staticFactory) New() Gateway {
	g := &staticGateway{id: f.id, features: make(map[string]struct{}, len(f.features))}
	for _, feature := range f.features {
		g.features[feature] = struct{}{}
	}
	return g
}

// Catalog lists the gateways the service can register.
func Catalog() []Factory {
	return []Factory{
		NewFactory("stripe", FeatureSubscriptions, FeatureScheduledPayments),
		NewFactory("paypal", FeatureSubscriptions, FeatureScheduledPayments),
		NewFactory("xendit", FeatureSubscriptions),
		NewFactory("bacs"),
		NewFactory("cheque"),
		NewFactory("cod"),
	}
}
