package payment

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("payment not found")

// Repository persists provider identifiers per order.
type Repository interface {
	Create(p Payment) error
	GetByOrderID(orderID int) (Payment, error)
	GetByProviderOrderID(providerOrderID string) (Payment, error)
	// ResolveChargeID upgrades the provisional payment id to the canonical
	// refundable charge id. It is a no-op once the id has been resolved.
	ResolveChargeID(orderID int, chargeID string) error
	UpdateStatus(orderID int, status string) error
}

// InMemoryRepository is used for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[int]Payment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{payments: make(map[int]Payment)}
}

func (r *InMemoryRepository) Create(p Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.OrderID] = p
	return nil
}

func (r *InMemoryRepository) GetByOrderID(orderID int) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[orderID]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) GetByProviderOrderID(providerOrderID string) (Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ProviderOrderID == providerOrderID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *InMemoryRepository) ResolveChargeID(orderID int, chargeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[orderID]
	if !ok {
		return ErrNotFound
	}
	if p.ChargeResolved {
		return nil
	}
	p.ProviderPaymentID = chargeID
	p.ChargeResolved = true
	r.payments[orderID] = p
	return nil
}

func (r *InMemoryRepository) UpdateStatus(orderID int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[orderID]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.payments[orderID] = p
	return nil
}
