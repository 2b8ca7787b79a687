package gateway

import (
	"time"

	"github.com/ammario/tlru"
)

const (
	capabilityCacheSize = 256
	capabilityTTL       = 5 * time.Minute
)

// Capabilities is what a subscription needs to know about its gateway.
// Known is false when the gateway is not currently registered.
type Capabilities struct {
	Known             bool
	ScheduledPayments bool
	Subscriptions     bool
}

type capabilityEntry struct {
	caps    Capabilities
	version uint64
}

// CapabilityCache is a read-through cache over the registry. An entry is
// only served while the registry is at the version it was read from, so
// enabling or disabling a gateway takes effect on the next lookup.
type CapabilityCache struct {
	registry *Registry
	cache    *tlru.Cache[string, capabilityEntry]
	ttl      time.Duration
}

func NewCapabilityCache(registry *Registry) *CapabilityCache {
	return &CapabilityCache{
		registry: registry,
		cache:    tlru.New[string](tlru.ConstantCost[capabilityEntry], capabilityCacheSize),
		ttl:      capabilityTTL,
	}
}

func (c *CapabilityCache) Lookup(id string) Capabilities {
	if entry, _, ok := c.cache.Get(id); ok && entry.version == c.registry.Version() {
		return entry.caps
	}

	var caps Capabilities
	g, ok, version := c.registry.lookup(id)
	if ok {
		caps = Capabilities{
			Known:             true,
			ScheduledPayments: g.Supports(FeatureScheduledPayments),
			Subscriptions:     g.Supports(FeatureSubscriptions),
		}
	}
	c.cache.Set(id, capabilityEntry{caps: caps, version: version}, c.ttl)
	return caps
}
