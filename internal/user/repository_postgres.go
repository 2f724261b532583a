package user

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password, address, contact, role, "createdAt", "updatedAt"`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var address, contact, createdAt, updatedAt sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &address, &contact, &u.Role, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	u.Address = address.String
	u.Contact = contact.String
	u.CreatedAt = createdAt.String
	u.UpdatedAt = updatedAt.String
	return u, nil
}

func (r *PostgresRepository) List() []User {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return []User{}
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			continue
		}
		u.Password = ""
		out = append(out, u)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepository) Create(u User) (User, error) {
	err := r.db.QueryRow(`INSERT INTO users (username, email, password, address, contact, role, "createdAt", "updatedAt")
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		u.Username, u.Email, u.Password, u.Address, u.Contact, u.Role, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Update(id int, u User) (User, error) {
	res, err := r.db.Exec(`UPDATE users SET username=$1, email=$2, password=$3, address=$4, contact=$5, role=$6, "updatedAt"=$7 WHERE id=$8`,
		u.Username, u.Email, u.Password, u.Address, u.Contact, u.Role, u.UpdatedAt, id)
	if err != nil {
		return User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	u.ID = id
	return u, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
