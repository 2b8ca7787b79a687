package domain

import "github.com/shopspring/decimal"

// Rows are what storage adapters return: one row per group, numbers as the
// database produced them. The format package turns them into report shapes.

type TypeRow struct {
	Month        string
	Count        int64
	Gross        decimal.Decimal
	NonZeroCount int64
}

type QuantityRow struct {
	Month           string
	Quantity        int64
	NonZeroQuantity int64
}

type GatewayRow struct {
	Gateway string
	Month   string
	Count   int64
	Gross   decimal.Decimal
}

type VolumeRow struct {
	Month string
	Count int64
	Gross decimal.Decimal
}

// FrequencyRow keeps the raw attribute values; interval is parsed during formatting.
type FrequencyRow struct {
	BillingPeriod   string
	BillingInterval string
	Count           int64
}

type PaymentMethodRow struct {
	PaymentMethod string
	ActiveCount   int64
	InactiveCount int64
}

type SubscriberRow struct {
	Active   int64
	Inactive int64
}

type RenewalModeRow struct {
	Manual    int64
	Automatic int64
}

type StatusRow struct {
	Status string
	Count  int64
}
