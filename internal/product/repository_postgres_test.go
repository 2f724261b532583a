package product

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestDecrementStock_Conditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// enough stock: one row updated
	mock.ExpectExec(`UPDATE products SET quantity = quantity - \$1 WHERE id = \$2 AND quantity >= \$1`).
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DecrementStock(1, 2); err != nil {
		t.Fatalf("expected decrement to succeed, got %v", err)
	}

	// not enough stock: the WHERE clause matches nothing
	mock.ExpectExec(`UPDATE products SET quantity = quantity - \$1 WHERE id = \$2 AND quantity >= \$1`).
		WithArgs(50, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.DecrementStock(1, 50); err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRestoreStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`UPDATE products SET quantity = quantity \+ \$1 WHERE id = \$2`).
		WithArgs(3, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.RestoreStock(7, 3); err != nil {
		t.Fatalf("expected restore to succeed, got %v", err)
	}

	mock.ExpectExec(`UPDATE products SET quantity = quantity \+ \$1 WHERE id = \$2`).
		WithArgs(3, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.RestoreStock(99, 3); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "productName", "quantity", "price", "image"})
	mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).WithArgs(5).WillReturnRows(rows)

	if _, err := repo.GetByID(5); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
