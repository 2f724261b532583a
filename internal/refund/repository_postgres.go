package refund

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateRequest(req Request) (Request, error) {
	err := r.db.QueryRow(`INSERT INTO refund_requests ("orderId", "userId", reason, status, "createdAt")
        VALUES ($1,$2,$3,'pending',NOW()) RETURNING id, status, to_char("createdAt", 'YYYY-MM-DD HH24:MI:SS')`,
		req.OrderID, req.UserID, req.Reason).
		Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

const requestColumns = `id, "orderId", "userId", reason, status, COALESCE("adminNote", ''),
        to_char("createdAt", 'YYYY-MM-DD HH24:MI:SS'), COALESCE(to_char("decidedAt", 'YYYY-MM-DD HH24:MI:SS'), '')`

func (r *PostgresRepository) GetRequest(id int) (Request, error) {
	req, err := scanRequest(r.db.QueryRow(`SELECT `+requestColumns+` FROM refund_requests WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (r *PostgresRepository) HasOpenRequest(orderID int) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM refund_requests WHERE "orderId" = $1 AND status = 'pending'`, orderID).Scan(&n)
	return n > 0, err
}

func (r *PostgresRepository) ListByUser(userID int) ([]Request, error) {
	rows, err := r.db.Query(`SELECT `+requestColumns+` FROM refund_requests WHERE "userId" = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListAll() ([]AdminRow, error) {
	rows, err := r.db.Query(`SELECT rr.id, rr."orderId", rr."userId", rr.reason, rr.status, COALESCE(rr."adminNote", ''),
            to_char(rr."createdAt", 'YYYY-MM-DD HH24:MI:SS'), COALESCE(to_char(rr."decidedAt", 'YYYY-MM-DD HH24:MI:SS'), ''),
            u.username, u.email,
            o.total, o."paymentMethod", o.status,
            COALESCE(p.provider, ''), COALESCE(p.provider_payment_id, '')
        FROM refund_requests rr
        JOIN users u ON u.id = rr."userId"
        JOIN orders o ON o.id = rr."orderId"
        LEFT JOIN payment p ON p.order_id = rr."orderId"
        ORDER BY rr.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AdminRow, 0)
	for rows.Next() {
		var row AdminRow
		if err := rows.Scan(&row.ID, &row.OrderID, &row.UserID, &row.Reason, &row.Status, &row.AdminNote,
			&row.CreatedAt, &row.DecidedAt,
			&row.Username, &row.Email,
			&row.OrderTotal, &row.PaymentMethod, &row.OrderStatus,
			&row.Provider, &row.ProviderPaymentID); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkRefunded(id int, adminNote string) error {
	return r.decide(id, StatusRefunded, adminNote)
}

func (r *PostgresRepository) Reject(id int, adminNote string) error {
	return r.decide(id, StatusRejected, adminNote)
}

// decide is conditional on the request still being pending, so two admins
// racing on the same request cannot both win.
func (r *PostgresRepository) decide(id int, status, adminNote string) error {
	res, err := r.db.Exec(`UPDATE refund_requests SET status = $1, "adminNote" = $2, "decidedAt" = NOW()
        WHERE id = $3 AND status = 'pending'`, status, adminNote, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetRequest(id); err != nil {
			return err
		}
		return ErrAlreadyDecided
	}
	return nil
}

func (r *PostgresRepository) CreateRefund(ref Refund) error {
	_, err := r.db.Exec(`INSERT INTO refunds ("orderId", "requestId", provider, "providerRefundId", amount, status, "createdAt")
        VALUES ($1,$2,$3,$4,$5,$6,NOW())`,
		ref.OrderID, ref.RequestID, ref.Provider, ref.ProviderRefundID, ref.Amount, ref.Status)
	return err
}

func scanRequest(row interface{ Scan(...any) error }) (Request, error) {
	var req Request
	if err := row.Scan(&req.ID, &req.OrderID, &req.UserID, &req.Reason, &req.Status, &req.AdminNote,
		&req.CreatedAt, &req.DecidedAt); err != nil {
		return Request{}, err
	}
	return req, nil
}
