package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/element"
)

// Factory turns a locator and a member set into a widget definition.
// loc may be nil for widgets without a locator of their own.
type Factory func(loc any, members element.Def) element.Def

// Registry manages the available widget kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Factory),
	}
}

// Register adds a kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = fn
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Define looks up a kind by name and produces its definition.
// Returns an error if the kind is not found.
func (r *Registry) Define(kind string, loc any, members element.Def) (element.Def, error) {
	r.mu.RLock()
	fn, ok := r.kinds[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("widget kind not found: %s", kind)
	}

	return fn(loc, members), nil
}
