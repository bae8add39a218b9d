package strategy

import (
	"sort"
	"sync"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Factory builds a fresh strategy instance. The optimizer runs one
// engine per parameter combination, so registered strategies must be
// constructed per run rather than shared.
type Factory func() Strategy

// Registry maps strategy names to factories.
type Registry interface {
	// Register adds a factory under the given name.
	Register(name string, factory Factory) error

	// Create builds a new instance of the named strategy.
	Create(name string) (Strategy, error)

	// List returns the registered names sorted alphabetically.
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// Register implements Registry.
func (r *registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy name is required")
	}

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyRegistered, "strategy %s is already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// Create implements Registry.
func (r *registry) Create(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s is not registered", name)
	}

	return factory(), nil
}

// List implements Registry.
func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
