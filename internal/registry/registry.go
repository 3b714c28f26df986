// Package registry provides a concurrency-safe, name-keyed lookup table for
// collectors. Generalized from
// XavierBriggs-Services/normalizer/internal/registry.NormalizerRegistry,
// which registers one SportNormalizer per sport key behind an RWMutex; here
// the key is a source name (spec.md §4.1) instead of a sport, and the
// registered value is a collector-shaped contract rather than a normalizer.
package registry

import (
	"fmt"
	"sync"

	"github.com/samlafell/mlbcore/pkg/contracts"
)

// Registry holds every enabled Collector, keyed by its Name().
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]contracts.Collector
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{collectors: make(map[string]contracts.Collector)}
}

// Register adds collector under its own Name(). Registering the same name
// twice is a configuration error, not a silent overwrite.
func (r *Registry) Register(collector contracts.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := collector.Name()
	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("registry: collector %q already registered", name)
	}
	r.collectors[name] = collector
	return nil
}

// Get retrieves a collector by name.
func (r *Registry) Get(name string) (contracts.Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collector, exists := r.collectors[name]
	return collector, exists
}

// All returns every registered collector. Order is not guaranteed.
func (r *Registry) All() []contracts.Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contracts.Collector, 0, len(r.collectors))
	for _, c := range r.collectors {
		out = append(out, c)
	}
	return out
}

// Names returns the registered collector names. Order is not guaranteed.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		out = append(out, name)
	}
	return out
}
