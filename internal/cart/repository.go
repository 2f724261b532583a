package cart

import (
	"sync"
)

// Repository persists the full cart per user. Every write replaces the whole
// row (overwrite semantics); concurrent writers for the same user are
// last-writer-wins by design of the store.
type Repository interface {
	Get(userID int) ([]Item, error)
	Save(userID int, items []Item) error
	Clear(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int][]Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int][]Item)}
}

func (r *InMemoryRepository) Get(userID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.carts[userID]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (r *InMemoryRepository) Save(userID int, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]Item, len(items))
	copy(stored, items)
	r.carts[userID] = stored
	return nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}
