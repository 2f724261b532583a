package order

import (
	"database/sql"
	"encoding/json"

	"github.com/marcusyeo/supermarket-backend/internal/cart"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	err = r.db.QueryRow(`INSERT INTO orders ("userId", items, total, "paymentMethod", "orderDate", status, "bankScreenshot")
        VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		ord.UserID, string(itemsJSON), ord.Total, ord.PaymentMethod, ord.OrderDate, ord.Status, nullIfEmpty(ord.BankScreenshot)).
		Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

const orderColumns = `id, "userId", items, total, "paymentMethod", "orderDate", status, "bankScreenshot"`

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders WHERE "userId" = $1 ORDER BY "orderDate" DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListAll() ([]AdminOrder, error) {
	rows, err := r.db.Query(`SELECT o.id, o."userId", o.items, o.total, o."paymentMethod", o."orderDate", o.status, o."bankScreenshot", u.username, u.email
        FROM orders o
        JOIN users u ON u.id = o."userId"
        ORDER BY o."orderDate" DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AdminOrder, 0)
	for rows.Next() {
		var ord AdminOrder
		var itemsJSON []byte
		var screenshot sql.NullString
		if err := rows.Scan(&ord.ID, &ord.UserID, &itemsJSON, &ord.Total, &ord.PaymentMethod, &ord.OrderDate, &ord.Status, &screenshot, &ord.Username, &ord.Email); err != nil {
			return nil, err
		}
		ord.BankScreenshot = screenshot.String
		if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
			ord.Items = []cart.Item{}
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(id int, status string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var ord Order
	var itemsJSON []byte
	var screenshot sql.NullString
	if err := row.Scan(&ord.ID, &ord.UserID, &itemsJSON, &ord.Total, &ord.PaymentMethod, &ord.OrderDate, &ord.Status, &screenshot); err != nil {
		return Order{}, err
	}
	ord.BankScreenshot = screenshot.String
	if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
		ord.Items = []cart.Item{}
	}
	return ord, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
