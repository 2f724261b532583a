package payment

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestResolveChargeID_OnlyWhileUnresolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// first resolve flips the flag
	mock.ExpectExec(`UPDATE payment SET provider_payment_id = \$1, charge_resolved = TRUE`).
		WithArgs("charge_1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.ResolveChargeID(10, "charge_1"); err != nil {
		t.Fatalf("expected first resolve to succeed, got %v", err)
	}

	// replay matches no rows and is harmless
	mock.ExpectExec(`UPDATE payment SET provider_payment_id = \$1, charge_resolved = TRUE`).
		WithArgs("charge_other", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.ResolveChargeID(10, "charge_other"); err != nil {
		t.Fatalf("expected replay to be a no-op, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByOrderID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"order_id", "provider", "provider_order_id", "provider_payment_id", "charge_resolved", "amount", "currency", "payment_status"})
	mock.ExpectQuery(`SELECT .* FROM payment WHERE order_id = \$1`).WithArgs(5).WillReturnRows(rows)

	if _, err := repo.GetByOrderID(5); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
