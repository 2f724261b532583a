package order

import (
	"errors"
)

// Service provides business logic for orders.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ord Order) (Order, error) {
	if ord.UserID <= 0 {
		return Order{}, errors.New("invalid user")
	}
	if len(ord.Items) == 0 {
		return Order{}, errors.New("empty cart")
	}
	return s.repo.Create(ord)
}

func (s *Service) GetByID(id int) (Order, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) ListAll() ([]AdminOrder, error) {
	return s.repo.ListAll()
}

// MarkRefunded moves an order to its terminal refunded status.
func (s *Service) MarkRefunded(id int) error {
	return s.repo.UpdateStatus(id, StatusRefunded)
}
