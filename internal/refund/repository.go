package refund

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("refund request not found")
	// ErrAlreadyDecided guards the one-decision rule: a request that is no
	// longer pending cannot be approved or rejected again.
	ErrAlreadyDecided = errors.New("refund request already decided")
)

type Repository interface {
	CreateRequest(req Request) (Request, error)
	GetRequest(id int) (Request, error)
	// HasOpenRequest reports whether the order already has a pending request.
	HasOpenRequest(orderID int) (bool, error)
	// ListByUser returns the user's requests, newest first.
	ListByUser(userID int) ([]Request, error)
	// ListAll returns every request joined with buyer, order and payment
	// details, newest first.
	ListAll() ([]AdminRow, error)
	MarkRefunded(id int, adminNote string) error
	// Reject moves a pending request to rejected; ErrAlreadyDecided if the
	// request was decided in the meantime.
	Reject(id int, adminNote string) error
	CreateRefund(ref Refund) error
}

// InMemoryRepository is used for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int
	requests map[int]Request
	refunds  []Refund
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, requests: make(map[int]Request)}
}

func (r *InMemoryRepository) CreateRequest(req Request) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	req.Status = StatusPending
	req.CreatedAt = time.Now().Format("2006-01-02 15:04:05")
	r.requests[req.ID] = req
	return req, nil
}

func (r *InMemoryRepository) GetRequest(id int) (Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *InMemoryRepository) HasOpenRequest(orderID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if req.OrderID == orderID && req.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Request{}
	for id := r.nextID - 1; id >= 1; id-- {
		if req, ok := r.requests[id]; ok && req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListAll() ([]AdminRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []AdminRow{}
	for id := r.nextID - 1; id >= 1; id-- {
		if req, ok := r.requests[id]; ok {
			out = append(out, AdminRow{Request: req})
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkRefunded(id int, adminNote string) error {
	return r.decide(id, StatusRefunded, adminNote)
}

func (r *InMemoryRepository) Reject(id int, adminNote string) error {
	return r.decide(id, StatusRejected, adminNote)
}

func (r *InMemoryRepository) decide(id int, status, adminNote string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != StatusPending {
		return ErrAlreadyDecided
	}
	req.Status = status
	req.AdminNote = adminNote
	req.DecidedAt = time.Now().Format("2006-01-02 15:04:05")
	r.requests[id] = req
	return nil
}

func (r *InMemoryRepository) CreateRefund(ref Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref.ID = len(r.refunds) + 1
	ref.CreatedAt = time.Now().Format("2006-01-02 15:04:05")
	r.refunds = append(r.refunds, ref)
	return nil
}

// Refunds returns the audit rows written so far; test helper.
func (r *InMemoryRepository) Refunds() []Refund {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Refund, len(r.refunds))
	copy(out, r.refunds)
	return out
}
