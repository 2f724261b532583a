package product

// ServiceInterface lists the catalog operations other packages depend on.
type ServiceInterface interface {
	List() []Product
	GetByID(id int) (Product, error)
	DecrementStock(id int, qty int) error
	RestoreStock(id int, qty int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []Product {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func (s *Service) DecrementStock(id int, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.DecrementStock(id, qty)
}

func (s *Service) RestoreStock(id int, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.repo.RestoreStock(id, qty)
}
