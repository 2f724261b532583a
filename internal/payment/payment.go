package payment

import "context"

// Provider identifiers stored on the payment row.
const (
	ProviderStripe = "STRIPE"
	ProviderPayPal = "PAYPAL"
	ProviderHitPay = "HITPAY"
)

// Payment records the provider-side identifiers for an order, 1:1 with the
// orders table. ProviderPaymentID is the refundable identifier; for HitPay it
// starts out as the payment-request id and is upgraded to the real charge id
// once a webhook or status lookup reveals it (ChargeResolved flips to true
// exactly once).
type Payment struct {
	OrderID           int     `json:"orderId"`
	Provider          string  `json:"provider"`
	ProviderOrderID   string  `json:"providerOrderId"`
	ProviderPaymentID string  `json:"providerPaymentId"`
	ChargeResolved    bool    `json:"chargeResolved"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"paymentStatus"`
}

// CaptureResult is the outcome of finalizing an authorized payment.
type CaptureResult struct {
	Status   string
	ChargeID string
}

// RefundResult is the outcome of a provider-side refund call.
type RefundResult struct {
	RefundID string
	Status   string
}

// Provider is the uniform contract each payment collaborator exposes to the
// checkout and refund workflows.
type Provider interface {
	// CreateOrder registers a payment of the given amount with the provider
	// and returns its external order id plus the URL the buyer must visit to
	// approve it (empty when the provider has no redirect step).
	CreateOrder(ctx context.Context, amount float64, currency string) (orderID, approveURL string, err error)
	// CaptureOrder finalizes the payment for a previously created order.
	CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error)
	// Refund reverses a captured payment. A nil amount means full refund.
	Refund(ctx context.Context, paymentID string, amount *float64, currency, reason string) (RefundResult, error)
}

// ChargeResolver is implemented by providers whose refundable charge id is
// not known at capture time and must be discovered later (HitPay).
type ChargeResolver interface {
	ResolveCharge(ctx context.Context, orderID string) (chargeID string, err error)
}
