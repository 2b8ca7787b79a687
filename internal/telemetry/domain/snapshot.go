package domain

import (
	"time"
)

type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
)

// Snapshot is one complete telemetry report. A snapshot is never modified
// after Collect returns it; a newer one replaces it in the cache wholesale.
type Snapshot struct {
	GeneratedAt          time.Time           `json:"generated_at"`
	GenerationDurationMS int64               `json:"generation_duration_ms"`
	CacheStatus          CacheStatus         `json:"telemetry_cache,omitempty"`
	OrderTrends          OrderTrends         `json:"order_trends"`
	Products             ProductMetrics      `json:"products"`
	Subscriptions        SubscriptionMetrics `json:"subscriptions"`
}

type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type OrderTrends struct {
	Window   Window                   `json:"window"`
	ByType   OrdersByType             `json:"by_type"`
	Gateways map[string][]VolumePoint `json:"gateways"`
	StoreGMV []VolumePoint            `json:"store_gmv"`
}

// OrdersByType always carries all four series, empty ones included.
type OrdersByType struct {
	Initial     []InitialPoint `json:"initial"`
	Renewal     []TypePoint    `json:"renewal"`
	Switch      []TypePoint    `json:"switch"`
	Resubscribe []TypePoint    `json:"resubscribe"`
}

type TypePoint struct {
	Month        string `json:"month"`
	Count        int64  `json:"count"`
	Gross        Money  `json:"gross"`
	NonZeroCount int64  `json:"non_zero_count"`
}

type InitialPoint struct {
	TypePoint
	Quantity        int64 `json:"quantity"`
	NonZeroQuantity int64 `json:"non_zero_quantity"`
}

type VolumePoint struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
	Gross Money  `json:"gross"`
}

type ProductMetrics struct {
	Frequencies   []FrequencyBucket `json:"frequencies"`
	GiftableCount int64             `json:"giftable_count"`
}

type SubscriptionMetrics struct {
	ActiveSubscribers   int64                    `json:"active_subscribers"`
	InactiveSubscribers int64                    `json:"inactive_subscribers"`
	RenewalMode         RenewalMode              `json:"renewal_mode"`
	Frequencies         []FrequencyBucket        `json:"frequencies"`
	PaymentMethods      []PaymentMethodBreakdown `json:"payment_methods"`
	ByStatus            []StatusCount            `json:"by_status"`
}

type RenewalMode struct {
	Manual    int64 `json:"manual"`
	Automatic int64 `json:"automatic"`
}

type FrequencyBucket struct {
	Period   string `json:"period"`
	Interval int    `json:"interval"`
	Count    int64  `json:"count"`
}

type Tristate string

const (
	Yes     Tristate = "yes"
	No      Tristate = "no"
	Unknown Tristate = "unknown"
)

func TristateOf(known, value bool) Tristate {
	if !known {
		return Unknown
	}
	if value {
		return Yes
	}
	return No
}

type PaymentMethodBreakdown struct {
	PaymentMethod string   `json:"payment_method"`
	ActiveCount   int64    `json:"active_count"`
	InactiveCount int64    `json:"inactive_count"`
	RenewsOffSite Tristate `json:"renews_off_site"`
	ManualOnly    Tristate `json:"manual_only"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
