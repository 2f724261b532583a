package payment

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const paymentColumns = `order_id, provider, provider_order_id, provider_payment_id, charge_resolved, amount, currency, payment_status`

func (r *PostgresRepository) Create(p Payment) error {
	_, err := r.db.Exec(`INSERT INTO payment (order_id, provider, provider_order_id, provider_payment_id, charge_resolved, amount, currency, payment_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.OrderID, p.Provider, p.ProviderOrderID, p.ProviderPaymentID, p.ChargeResolved, p.Amount, p.Currency, p.Status)
	return err
}

func (r *PostgresRepository) GetByOrderID(orderID int) (Payment, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+paymentColumns+` FROM payment WHERE order_id = $1`, orderID))
}

func (r *PostgresRepository) GetByProviderOrderID(providerOrderID string) (Payment, error) {
	return r.scanOne(r.db.QueryRow(`SELECT `+paymentColumns+` FROM payment WHERE provider_order_id = $1`, providerOrderID))
}

// ResolveChargeID upgrades the provisional payment id exactly once; the
// charge_resolved guard in the WHERE clause makes replays harmless.
func (r *PostgresRepository) ResolveChargeID(orderID int, chargeID string) error {
	_, err := r.db.Exec(`UPDATE payment SET provider_payment_id = $1, charge_resolved = TRUE
        WHERE order_id = $2 AND charge_resolved = FALSE`, chargeID, orderID)
	return err
}

func (r *PostgresRepository) UpdateStatus(orderID int, status string) error {
	_, err := r.db.Exec(`UPDATE payment SET payment_status = $1 WHERE order_id = $2`, status, orderID)
	return err
}

func (r *PostgresRepository) scanOne(row *sql.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.OrderID, &p.Provider, &p.ProviderOrderID, &p.ProviderPaymentID, &p.ChargeResolved, &p.Amount, &p.Currency, &p.Status)
	if err == sql.ErrNoRows {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}
