// Package resolver fills gaps in a Primary-tier field bag from lower-trust
// sources, one tier at a time.
package resolver

import (
	"context"
	"sort"
	"sync"

	"github.com/Drewraw/social-record-platform/internal/model"
)

// Source supplies fields for a named person at a fixed trust tier.
type Source interface {
	// Name identifies the source in logs and in the registry.
	Name() string
	// Tier is the trust tier of every field the source returns.
	Tier() model.Tier
	// Lookup returns fields for subject. No match is an empty result, not
	// an error.
	Lookup(ctx context.Context, subject string) ([]model.Field, error)
}

// Registry holds the available sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source, replacing any source with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get returns a source by name, or nil if not found.
func (r *Registry) Get(name string) Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// List returns registered source names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns sources below the Primary tier, most trusted first. Ties
// break by name.
func (r *Registry) Ordered() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.Tier() > model.TierPrimary {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier() != out[j].Tier() {
			return out[i].Tier() < out[j].Tier()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
