package checkout

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/cart"
	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/payment"
	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrReceipt wraps receipt generation failures; the order and stock
	// changes are already committed when it is returned.
	ErrReceipt = errors.New("receipt generation failed")
)

// MethodKind tags the payment variant a confirmation arrived through.
type MethodKind string

const (
	MethodCard         MethodKind = "card"
	MethodPayPal       MethodKind = "paypal"
	MethodPayNow       MethodKind = "paynow"
	MethodBankTransfer MethodKind = "banktransfer"
)

// Method is the tagged union of payment variants converging on ConfirmOrder.
// Exactly one constructor applies per variant; provider identifier fields are
// only meaningful for the variants that set them.
type Method struct {
	Kind              MethodKind
	Provider          string
	ProviderOrderID   string
	ProviderPaymentID string
	ChargeResolved    bool
	BankScreenshot    string
}

// CardMethod is a confirmed Stripe Checkout payment.
func CardMethod(sessionID, paymentIntentID string) Method {
	return Method{
		Kind:              MethodCard,
		Provider:          payment.ProviderStripe,
		ProviderOrderID:   sessionID,
		ProviderPaymentID: paymentIntentID,
		ChargeResolved:    paymentIntentID != "",
	}
}

// PayPalMethod is a captured PayPal order.
func PayPalMethod(orderID, captureID string) Method {
	return Method{
		Kind:              MethodPayPal,
		Provider:          payment.ProviderPayPal,
		ProviderOrderID:   orderID,
		ProviderPaymentID: captureID,
		ChargeResolved:    captureID != "",
	}
}

// PayNowMethod is a completed HitPay payment request. The charge id may be
// empty at confirmation time; the payment-request id then stands in as a
// provisional refundable id until the webhook or a lookup resolves it.
func PayNowMethod(requestID, chargeID string) Method {
	m := Method{
		Kind:            MethodPayNow,
		Provider:        payment.ProviderHitPay,
		ProviderOrderID: requestID,
	}
	if chargeID != "" {
		m.ProviderPaymentID = chargeID
		m.ChargeResolved = true
	} else {
		m.ProviderPaymentID = requestID
	}
	return m
}

// BankTransferMethod is a manual bank transfer with an uploaded screenshot.
// No payment row is written; there is nothing to refund programmatically.
func BankTransferMethod(screenshotPath string) Method {
	return Method{Kind: MethodBankTransfer, BankScreenshot: screenshotPath}
}

// Label is the human-readable payment method stored on the order.
func (m Method) Label() string {
	switch m.Kind {
	case MethodCard:
		return "Stripe Card"
	case MethodPayPal:
		return "PayPal"
	case MethodPayNow:
		return "PayNow"
	case MethodBankTransfer:
		return "Bank Transfer"
	}
	return "Card"
}

// ReceiptGenerator renders the receipt document for a confirmed order.
type ReceiptGenerator interface {
	Generate(ord order.Order, username, email string) (string, error)
	Path(orderID int) string
}

// Result reports what a confirmation produced.
type Result struct {
	Order       order.Order `json:"order"`
	ReceiptPath string      `json:"receiptDownloadPath"`
}

// Service orchestrates order confirmation: cart snapshot -> order row ->
// stock decrements -> payment row -> receipt -> cart clear. Payment itself is
// confirmed upstream (card capture, PayPal capture, HitPay poll/webhook)
// before ConfirmOrder runs, so orders are inserted directly as paid.
type Service struct {
	carts    *cart.Service
	products product.ServiceInterface
	orders   order.Repository
	payments payment.Repository
	users    user.ServiceInterface
	receipts ReceiptGenerator
	currency string
}

func NewService(carts *cart.Service, products product.ServiceInterface, orders order.Repository,
	payments payment.Repository, users user.ServiceInterface, receipts ReceiptGenerator, currency string) *Service {
	return &Service{
		carts:    carts,
		products: products,
		orders:   orders,
		payments: payments,
		users:    users,
		receipts: receipts,
		currency: currency,
	}
}

// CartTotal returns the current cart and its total.
func (s *Service) CartTotal(userID int) ([]cart.Item, float64, error) {
	items, err := s.carts.List(userID)
	if err != nil {
		return nil, 0, err
	}
	return items, cart.Total(items), nil
}

// ConfirmOrder runs the confirmation sequence. The steps after the order
// insert are not wrapped in a transaction: a stock conflict or receipt
// failure leaves the order row (and any earlier decrements) in place and is
// reported to the caller.
func (s *Service) ConfirmOrder(userID int, method Method) (Result, error) {
	items, err := s.carts.List(userID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}
	total := cart.Total(items)

	u, err := s.users.GetByID(userID)
	if err != nil {
		return Result{}, errors.Wrap(err, "load user")
	}

	created, err := s.orders.Create(order.Order{
		UserID:         userID,
		Items:          items,
		Total:          total,
		PaymentMethod:  method.Label(),
		OrderDate:      time.Now().Format("2006-01-02 15:04:05"),
		Status:         order.StatusPaid,
		BankScreenshot: method.BankScreenshot,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "save order")
	}

	for _, item := range items {
		if err := s.products.DecrementStock(item.ProductID, item.Quantity); err != nil {
			return Result{Order: created}, errors.Wrapf(err, "insufficient stock for %s", item.ProductName)
		}
	}

	if method.Provider != "" {
		pm := payment.Payment{
			OrderID:           created.ID,
			Provider:          method.Provider,
			ProviderOrderID:   method.ProviderOrderID,
			ProviderPaymentID: method.ProviderPaymentID,
			ChargeResolved:    method.ChargeResolved,
			Amount:            total,
			Currency:          s.currency,
			Status:            order.StatusPaid,
		}
		if err := s.payments.Create(pm); err != nil {
			// The refund flow needs this row; surface loudly but keep the order.
			logrus.WithError(err).WithField("orderId", created.ID).Error("payment row insert failed")
		}
	}

	receiptPath, err := s.receipts.Generate(created, u.Username, u.Email)
	if err != nil {
		return Result{Order: created}, errors.Wrap(ErrReceipt, err.Error())
	}

	if err := s.carts.Clear(userID); err != nil {
		logrus.WithError(err).WithField("userId", userID).Warn("cart clear failed after checkout")
	}

	return Result{Order: created, ReceiptPath: receiptPath}, nil
}
