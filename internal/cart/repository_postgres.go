package cart

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(userID int) ([]Item, error) {
	var raw sql.NullString
	err := r.db.QueryRow(`SELECT items FROM carts WHERE "userId" = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !raw.Valid || raw.String == "" {
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Save(userID int, items []Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`INSERT INTO carts ("userId", items) VALUES ($1, $2)
        ON CONFLICT ("userId") DO UPDATE SET items = EXCLUDED.items`, userID, string(payload))
	return err
}

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(`DELETE FROM carts WHERE "userId" = $1`, userID)
	return err
}
