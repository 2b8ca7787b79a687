package gateway

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the currently enabled gateways.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	enabled   map[string]Gateway
	// version changes whenever the enabled set does.
	version uint64
}

func NewRegistry(factories ...Factory) *Registry {
	r := &Registry{
		factories: make(map[string]Factory, len(factories)),
		enabled:   map[string]Gateway{},
	}
	for _, f := range factories {
		r.factories[f.ID()] = f
	}
	return r
}

// Enable registers a known gateway.
func (r *Registry) Enable(id string) error {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	f, ok := r.factories[id]
	if ok {
		r.enabled[id] = f.New()
		r.version++
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGateway, id)
	}
	return nil
}

func (r *Registry) Disable(id string) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enabled[id]; ok {
		delete(r.enabled, id)
		r.version++
	}
}

// Sync makes ids the exact set of enabled gateways. Unknown ids are
// reported and skipped; the rest of the set is still applied.
func (r *Registry) Sync(ids []string) error {
	want := map[string]bool{}
	var errs []error
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := r.Enable(id); err != nil {
			errs = append(errs, err)
			continue
		}
		want[id] = true
	}

	for _, id := range r.Enabled() {
		if !want[id] {
			r.Disable(id)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Get(id string) (Gateway, bool) {
	g, ok, _ := r.lookup(id)
	return g, ok
}

// lookup also returns the version the answer belongs to.
func (r *Registry) lookup(id string) (Gateway, bool, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.enabled[id]
	return g, ok, r.version
}

func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Enabled lists the enabled gateway ids in order.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.enabled))
	for id := range r.enabled {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
