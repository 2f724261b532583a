package refund

// Refund request statuses. A request is decided at most once:
// pending -> refunded or pending -> rejected, never back.
const (
	StatusPending  = "pending"
	StatusRefunded = "refunded"
	StatusRejected = "rejected"
)

// Request is a customer's ask to reverse a paid order.
type Request struct {
	ID        int    `json:"id"`
	OrderID   int    `json:"orderId"`
	UserID    int    `json:"userId"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	AdminNote string `json:"adminNote,omitempty"`
	CreatedAt string `json:"createdAt"`
	DecidedAt string `json:"decidedAt,omitempty"`
}

// Refund is the audit row written after a provider-side refund succeeds.
type Refund struct {
	ID               int     `json:"id"`
	OrderID          int     `json:"orderId"`
	RequestID        int     `json:"requestId"`
	Provider         string  `json:"provider"`
	ProviderRefundID string  `json:"providerRefundId"`
	Amount           float64 `json:"amount"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"createdAt"`
}

// AdminRow is the admin dashboard view of a request: the request joined with
// the buyer's identity, the order it targets, and the payment identifiers the
// refund would act on.
type AdminRow struct {
	Request
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	OrderTotal        float64 `json:"orderTotal"`
	PaymentMethod     string  `json:"paymentMethod"`
	OrderStatus       string  `json:"orderStatus"`
	Provider          string  `json:"provider,omitempty"`
	ProviderPaymentID string  `json:"providerPaymentId,omitempty"`
}
