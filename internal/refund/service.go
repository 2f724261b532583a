package refund

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/payment"
	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

var (
	ErrNotOwner       = errors.New("order does not belong to this user")
	ErrNotRefundable  = errors.New("only paid orders can be refunded")
	ErrReasonRequired = errors.New("a refund reason is required")
	// ErrDuplicateRequest keeps one open request per order.
	ErrDuplicateRequest = errors.New("a refund request for this order is already pending")
	// ErrNoPaymentInfo means the order has no usable provider identifiers, so
	// a programmatic refund is impossible (e.g. bank transfer orders).
	ErrNoPaymentInfo = errors.New("no payment information recorded for this order")
)

const maxReasonLen = 255

// Notifier tells the customer their refund went through; failures are logged,
// never propagated.
type Notifier interface {
	SendRefundApproved(toEmail, username string, orderID, refundRequestID int) error
}

// Service owns the refund workflow: customers file requests against their
// paid orders, admins approve (provider refund + restock + status flips) or
// reject them.
type Service struct {
	requests  Repository
	orders    order.Repository
	payments  payment.Repository
	products  product.ServiceInterface
	users     user.ServiceInterface
	providers map[string]payment.Provider
	notifier  Notifier
}

func NewService(requests Repository, orders order.Repository, payments payment.Repository,
	products product.ServiceInterface, users user.ServiceInterface,
	providers map[string]payment.Provider, notifier Notifier) *Service {
	return &Service{
		requests:  requests,
		orders:    orders,
		payments:  payments,
		products:  products,
		users:     users,
		providers: providers,
		notifier:  notifier,
	}
}

// CreateRequest files a refund request for one of the user's paid orders.
func (s *Service) CreateRequest(userID, orderID int, reason string) (Request, error) {
	ord, err := s.orders.GetByID(orderID)
	if err != nil {
		return Request{}, err
	}
	if ord.UserID != userID {
		return Request{}, ErrNotOwner
	}
	if ord.Status != order.StatusPaid {
		return Request{}, ErrNotRefundable
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Request{}, ErrReasonRequired
	}
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}

	open, err := s.requests.HasOpenRequest(orderID)
	if err != nil {
		return Request{}, err
	}
	if open {
		return Request{}, ErrDuplicateRequest
	}

	return s.requests.CreateRequest(Request{OrderID: orderID, UserID: userID, Reason: reason})
}

func (s *Service) ListByUser(userID int) ([]Request, error) {
	return s.requests.ListByUser(userID)
}

func (s *Service) ListAll() ([]AdminRow, error) {
	return s.requests.ListAll()
}

// Approve executes a pending request: refund at the provider, restore stock,
// write the audit row and flip statuses. The provider call comes first; if it
// fails nothing else is touched and the request stays pending, so the admin
// can retry.
func (s *Service) Approve(ctx context.Context, requestID int, adminNote string) (Refund, error) {
	req, err := s.requests.GetRequest(requestID)
	if err != nil {
		return Refund{}, err
	}
	if req.Status != StatusPending {
		return Refund{}, ErrAlreadyDecided
	}

	ord, err := s.orders.GetByID(req.OrderID)
	if err != nil {
		return Refund{}, errors.Wrap(err, "load order")
	}

	pm, err := s.payments.GetByOrderID(req.OrderID)
	if err != nil {
		if err == payment.ErrNotFound {
			return Refund{}, ErrNoPaymentInfo
		}
		return Refund{}, errors.Wrap(err, "load payment")
	}

	provider, ok := s.providers[pm.Provider]
	if !ok {
		return Refund{}, ErrNoPaymentInfo
	}

	// HitPay may still be carrying the provisional payment-request id if the
	// webhook never arrived; look the real charge id up now.
	if !pm.ChargeResolved {
		resolver, ok := provider.(payment.ChargeResolver)
		if !ok {
			return Refund{}, ErrNoPaymentInfo
		}
		chargeID, err := resolver.ResolveCharge(ctx, pm.ProviderOrderID)
		if err != nil {
			return Refund{}, errors.Wrap(err, "resolve charge id")
		}
		if err := s.payments.ResolveChargeID(req.OrderID, chargeID); err != nil {
			logrus.WithError(err).WithField("orderId", req.OrderID).Warn("charge id cache update failed")
		}
		pm.ProviderPaymentID = chargeID
	}

	res, err := provider.Refund(ctx, pm.ProviderPaymentID, nil, pm.Currency, req.Reason)
	if err != nil {
		return Refund{}, errors.Wrap(err, "provider refund")
	}

	for _, item := range ord.Items {
		if err := s.products.RestoreStock(item.ProductID, item.Quantity); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"orderId":   ord.ID,
				"productId": item.ProductID,
			}).Error("stock restore failed after refund")
		}
	}

	audit := Refund{
		OrderID:          ord.ID,
		RequestID:        req.ID,
		Provider:         pm.Provider,
		ProviderRefundID: res.RefundID,
		Amount:           pm.Amount,
		Status:           res.Status,
	}
	if err := s.requests.CreateRefund(audit); err != nil {
		logrus.WithError(err).WithField("requestId", req.ID).Error("refund audit insert failed")
	}
	if err := s.requests.MarkRefunded(req.ID, adminNote); err != nil {
		return audit, errors.Wrap(err, "mark request refunded")
	}
	if err := s.orders.UpdateStatus(ord.ID, order.StatusRefunded); err != nil {
		logrus.WithError(err).WithField("orderId", ord.ID).Error("order status update failed after refund")
	}
	if err := s.payments.UpdateStatus(ord.ID, order.StatusRefunded); err != nil {
		logrus.WithError(err).WithField("orderId", ord.ID).Warn("payment status update failed after refund")
	}

	if s.notifier != nil {
		u, err := s.users.GetByID(ord.UserID)
		if err == nil {
			if err := s.notifier.SendRefundApproved(u.Email, u.Username, ord.ID, req.ID); err != nil {
				logrus.WithError(err).WithField("orderId", ord.ID).Warn("refund email failed")
			}
		}
	}

	return audit, nil
}

// Reject declines a pending request; stock and order status are untouched.
func (s *Service) Reject(requestID int, adminNote string) error {
	return s.requests.Reject(requestID, adminNote)
}
