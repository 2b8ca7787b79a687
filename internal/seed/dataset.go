package seed

import "time"

// Dataset is a store described independently of its physical layout. Write
// renders the same dataset into either schema, which is what lets the
// aggregators be checked against each other.
type Dataset struct {
	Orders        []Order
	Subscriptions []Subscription
	Products      []Product
	Options       map[string]string
}

// Order is a shop order. Kind is one of renewal, switch or resubscribe and
// becomes a relationship marker; initial orders are expressed by pointing a
// Subscription's ParentRef at them.
type Order struct {
	Ref           string
	Status        string
	Created       time.Time
	Total         string
	PaymentMethod string
	CustomerID    int64
	Kind          string
	Quantity      int
}

type Subscription struct {
	Ref             string
	ParentRef       string
	Status          string
	Created         time.Time
	CustomerID      int64
	PaymentMethod   string
	BillingPeriod   string
	BillingInterval string
	ManualRenewal   string
}

// Product is a catalog entry. Variations set ParentRef and leave Type empty.
type Product struct {
	Ref       string
	ParentRef string
	Type      string
	Status    string
	Period    string
	Interval  string
	Gifting   string
}
