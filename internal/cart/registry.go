package cart

import (
	"context"
	"sync"
)

// Registry hands out one Store per cart ID per process, so every consumer of
// a cart shares the same instance. Concurrent checkouts of the same cart from
// different processes are last-write-wins at the storage slot.
type Registry struct {
	mu      sync.Mutex
	storage Storage
	stores  map[string]*Store
}

func NewRegistry(storage Storage) *Registry {
	return &Registry{
		storage: storage,
		stores:  make(map[string]*Store),
	}
}

// Get returns the store for cartID, loading it from storage on first use.
func (r *Registry) Get(ctx context.Context, cartID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[cartID]; ok {
		return s
	}
	s := NewStore(ctx, cartID, r.storage)
	r.stores[cartID] = s
	return s
}
