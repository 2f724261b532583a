package product

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, "productName", quantity, price, image`

func (r *PostgresRepository) List() []Product {
	rows, err := r.db.Query(`SELECT ` + productColumns + ` FROM products ORDER BY id`)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		var image sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &image); err != nil {
			continue
		}
		p.Image = image.String
		out = append(out, p)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	var p Product
	var image sql.NullString
	err := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &image)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Image = image.String
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(`INSERT INTO products ("productName", quantity, price, image) VALUES ($1,$2,$3,$4) RETURNING id`,
		p.Name, p.Quantity, p.Price, nullIfEmpty(p.Image)).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	res, err := r.db.Exec(`UPDATE products SET "productName"=$1, quantity=$2, price=$3, image=$4 WHERE id=$5`,
		p.Name, p.Quantity, p.Price, nullIfEmpty(p.Image), id)
	if err != nil {
		return Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock relies on a single conditional UPDATE so stock can never go
// negative even without a surrounding transaction.
func (r *PostgresRepository) DecrementStock(id int, qty int) error {
	res, err := r.db.Exec(`UPDATE products SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1`, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *PostgresRepository) RestoreStock(id int, qty int) error {
	res, err := r.db.Exec(`UPDATE products SET quantity = quantity + $1 WHERE id = $2`, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
