package order

import (
	"github.com/marcusyeo/supermarket-backend/internal/cart"
)

// Order statuses. Transitions are forward-only:
// pending -> paid -> refunded.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusRefunded = "refunded"
)

// Order is a purchase. Items is the cart snapshot at purchase time and is
// immutable after creation; receipts are rendered from it, never from the
// live catalog.
type Order struct {
	ID             int         `json:"id"`
	UserID         int         `json:"userId"`
	Items          []cart.Item `json:"items"`
	Total          float64     `json:"total"`
	PaymentMethod  string      `json:"paymentMethod"`
	OrderDate      string      `json:"orderDate"`
	Status         string      `json:"status"`
	BankScreenshot string      `json:"bankScreenshot,omitempty"`
	ReceiptLink    string      `json:"receiptLink,omitempty"`
}

// AdminOrder joins the buyer's identity onto the order for dashboards.
type AdminOrder struct {
	Order
	Username string `json:"username"`
	Email    string `json:"email"`
}
