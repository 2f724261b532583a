package cart

import (
	"errors"
	"fmt"

	"github.com/marcusyeo/supermarket-backend/internal/product"
)

var (
	ErrItemNotFound = errors.New("item not found in cart")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Service owns cart mutations. Add and Update re-validate the requested
// quantity against live catalog stock and cap it instead of failing hard;
// the returned warning tells the caller when that happened.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) List(userID int) ([]Item, error) {
	return s.repo.Get(userID)
}

// Add puts qty units of a product into the cart, capping the resulting
// quantity at available stock.
func (s *Service) Add(userID, productID, qty int) ([]Item, string, error) {
	if qty < 1 {
		qty = 1
	}
	p, err := s.products.GetByID(productID)
	if err != nil {
		return nil, "", err
	}

	items, err := s.repo.Get(userID)
	if err != nil {
		return nil, "", err
	}

	idx := -1
	inCart := 0
	for i, it := range items {
		if it.ProductID == productID {
			idx = i
			inCart = it.Quantity
			break
		}
	}

	warning := ""
	newQty := inCart + qty
	if newQty > p.Quantity {
		newQty = p.Quantity
		warning = fmt.Sprintf("Not enough stock. Available: %d, in cart: %d.", p.Quantity, inCart)
	}

	switch {
	case newQty <= 0:
		if idx >= 0 {
			items = append(items[:idx], items[idx+1:]...)
		}
	case idx >= 0:
		items[idx].Quantity = newQty
	default:
		items = append(items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    newQty,
			Image:       p.Image,
		})
	}

	if err := s.repo.Save(userID, items); err != nil {
		return nil, "", err
	}
	return items, warning, nil
}

// Update sets the quantity of an existing cart line, capped at stock.
func (s *Service) Update(userID, productID, qty int) ([]Item, string, error) {
	items, err := s.repo.Get(userID)
	if err != nil {
		return nil, "", err
	}

	idx := -1
	for i, it := range items {
		if it.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, "", ErrItemNotFound
	}

	if qty < 1 {
		qty = 1
	}

	p, err := s.products.GetByID(productID)
	if err != nil {
		return nil, "", err
	}

	warning := ""
	if qty > p.Quantity {
		qty = p.Quantity
		warning = fmt.Sprintf("Not enough stock. Max available: %d.", p.Quantity)
	}

	if qty <= 0 {
		items = append(items[:idx], items[idx+1:]...)
	} else {
		items[idx].Quantity = qty
	}

	if err := s.repo.Save(userID, items); err != nil {
		return nil, "", err
	}
	return items, warning, nil
}

// Remove drops a line from the cart entirely.
func (s *Service) Remove(userID, productID int) ([]Item, error) {
	items, err := s.repo.Get(userID)
	if err != nil {
		return nil, err
	}

	before := len(items)
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	if len(kept) == before {
		return nil, ErrItemNotFound
	}

	if err := s.repo.Save(userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the cart.
func (s *Service) Clear(userID int) error {
	return s.repo.Clear(userID)
}
