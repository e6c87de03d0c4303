package strategies

import (
	"sync"

	"github.com/jrsteele09/go-idp-core/internal/errors"
)

// Registry maps strategy names to implementations. Registration happens
// at startup; lookups afterwards are read-only.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register binds a strategy name. Later registrations replace earlier ones.
func (r *Registry) Register(name string, strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = strategy
}

// Resolve returns the strategy for name, or ErrStrategyNotFound.
func (r *Registry) Resolve(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.strategies[name]
	if !ok {
		return nil, errors.ErrStrategyNotFound
	}
	return strategy, nil
}

// Has reports whether a strategy is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[name]
	return ok
}
