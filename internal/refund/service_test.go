package refund

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusyeo/supermarket-backend/internal/cart"
	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/payment"
	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

type fakeProvider struct {
	refundCalls  []string
	refundErr    error
	resolveCalls []string
	resolvedID   string
	resolveErr   error
}

func (f *fakeProvider) CreateOrder(ctx context.Context, amount float64, currency string) (string, string, error) {
	return "", "", errors.New("not used")
}

func (f *fakeProvider) CaptureOrder(ctx context.Context, orderID string) (payment.CaptureResult, error) {
	return payment.CaptureResult{}, errors.New("not used")
}

func (f *fakeProvider) Refund(ctx context.Context, paymentID string, amount *float64, currency, reason string) (payment.RefundResult, error) {
	f.refundCalls = append(f.refundCalls, paymentID)
	if f.refundErr != nil {
		return payment.RefundResult{}, f.refundErr
	}
	return payment.RefundResult{RefundID: "re_1", Status: "succeeded"}, nil
}

func (f *fakeProvider) ResolveCharge(ctx context.Context, orderID string) (string, error) {
	f.resolveCalls = append(f.resolveCalls, orderID)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.resolvedID, nil
}

type notifierSpy struct {
	calls int
	err   error
}

func (n *notifierSpy) SendRefundApproved(toEmail, username string, orderID, refundRequestID int) error {
	n.calls++
	return n.err
}

type refundFixture struct {
	service  *Service
	requests *InMemoryRepository
	orders   *order.InMemoryRepository
	payments *payment.InMemoryRepository
	products *product.Service
	provider *fakeProvider
	notifier *notifierSpy
	orderID  int
}

func newRefundFixture(t *testing.T, pm payment.Payment) *refundFixture {
	t.Helper()

	requests := NewInMemoryRepository()
	orders := order.NewInMemoryRepository()
	payments := payment.NewInMemoryRepository()
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Rice", Quantity: 3, Price: 10.00},
	}))
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 1, Username: "alice", Email: "alice@example.com"},
	}))
	provider := &fakeProvider{resolvedID: "charge_real"}
	notifier := &notifierSpy{}

	ord, err := orders.Create(order.Order{
		UserID: 1,
		Items:  []cart.Item{{ProductID: 1, ProductName: "Rice", Price: 10.00, Quantity: 2}},
		Total:  20.00,
		Status: order.StatusPaid,
	})
	require.NoError(t, err)

	pm.OrderID = ord.ID
	require.NoError(t, payments.Create(pm))

	service := NewService(requests, orders, payments, products, users,
		map[string]payment.Provider{pm.Provider: provider}, notifier)

	return &refundFixture{
		service:  service,
		requests: requests,
		orders:   orders,
		payments: payments,
		products: products,
		provider: provider,
		notifier: notifier,
		orderID:  ord.ID,
	}
}

func TestApprove_RefundsRestocksAndFlipsStatuses(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: "pi_1",
		ChargeResolved:    true,
		Amount:            20.00,
		Currency:          "SGD",
		Status:            order.StatusPaid,
	})

	req, err := f.service.CreateRequest(1, f.orderID, "changed my mind")
	require.NoError(t, err)

	audit, err := f.service.Approve(context.Background(), req.ID, "ok")
	require.NoError(t, err)

	assert.Equal(t, []string{"pi_1"}, f.provider.refundCalls)
	assert.Equal(t, "re_1", audit.ProviderRefundID)
	assert.Equal(t, 20.00, audit.Amount)

	// stock restored: 3 seeded + 2 refunded
	p, _ := f.products.GetByID(1)
	assert.Equal(t, 5, p.Quantity)

	ord, _ := f.orders.GetByID(f.orderID)
	assert.Equal(t, order.StatusRefunded, ord.Status)

	got, _ := f.requests.GetRequest(req.ID)
	assert.Equal(t, StatusRefunded, got.Status)
	assert.Equal(t, "ok", got.AdminNote)

	pm, _ := f.payments.GetByOrderID(f.orderID)
	assert.Equal(t, order.StatusRefunded, pm.Status)

	assert.Len(t, f.requests.Refunds(), 1)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestApprove_SecondDecisionRejected(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: "pi_1",
		ChargeResolved:    true,
		Amount:            20.00,
	})
	req, err := f.service.CreateRequest(1, f.orderID, "changed my mind")
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), req.ID, "")
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), req.ID, "")
	assert.Equal(t, ErrAlreadyDecided, err)
	// exactly one provider refund despite the second attempt
	assert.Len(t, f.provider.refundCalls, 1)
}

func TestApprove_ProviderErrorMutatesNothing(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: "pi_1",
		ChargeResolved:    true,
		Amount:            20.00,
	})
	f.provider.refundErr = errors.New("card network down")

	req, err := f.service.CreateRequest(1, f.orderID, "late delivery")
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), req.ID, "")
	require.Error(t, err)

	// the request stays pending so the admin can retry
	got, _ := f.requests.GetRequest(req.ID)
	assert.Equal(t, StatusPending, got.Status)

	p, _ := f.products.GetByID(1)
	assert.Equal(t, 3, p.Quantity, "stock must be untouched")

	ord, _ := f.orders.GetByID(f.orderID)
	assert.Equal(t, order.StatusPaid, ord.Status)
	assert.Empty(t, f.requests.Refunds())
	assert.Zero(t, f.notifier.calls)
}

func TestApprove_ResolvesHitPayChargeJustInTime(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderHitPay,
		ProviderOrderID:   "req_77",
		ProviderPaymentID: "req_77",
		ChargeResolved:    false,
		Amount:            20.00,
	})

	req, err := f.service.CreateRequest(1, f.orderID, "wrong item")
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), req.ID, "")
	require.NoError(t, err)

	// the refund went to the resolved charge, not the request id
	assert.Equal(t, []string{"req_77"}, f.provider.resolveCalls)
	assert.Equal(t, []string{"charge_real"}, f.provider.refundCalls)

	// the resolved id was cached back onto the payment row
	pm, _ := f.payments.GetByOrderID(f.orderID)
	assert.True(t, pm.ChargeResolved)
	assert.Equal(t, "charge_real", pm.ProviderPaymentID)
}

func TestReject(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: "pi_1",
		ChargeResolved:    true,
	})
	req, err := f.service.CreateRequest(1, f.orderID, "no longer needed")
	require.NoError(t, err)

	require.NoError(t, f.service.Reject(req.ID, "outside the window"))

	got, _ := f.requests.GetRequest(req.ID)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "outside the window", got.AdminNote)

	// order and stock untouched
	ord, _ := f.orders.GetByID(f.orderID)
	assert.Equal(t, order.StatusPaid, ord.Status)

	assert.Equal(t, ErrAlreadyDecided, f.service.Reject(req.ID, "again"))
}

func TestCreateRequest_Validation(t *testing.T) {
	f := newRefundFixture(t, payment.Payment{
		Provider:          payment.ProviderStripe,
		ProviderPaymentID: "pi_1",
		ChargeResolved:    true,
	})

	_, err := f.service.CreateRequest(2, f.orderID, "not my order")
	assert.Equal(t, ErrNotOwner, err)

	_, err = f.service.CreateRequest(1, f.orderID, "   ")
	assert.Equal(t, ErrReasonRequired, err)

	_, err = f.service.CreateRequest(1, 999, "missing")
	assert.Equal(t, order.ErrNotFound, err)

	_, err = f.service.CreateRequest(1, f.orderID, "first")
	require.NoError(t, err)
	_, err = f.service.CreateRequest(1, f.orderID, "second")
	assert.Equal(t, ErrDuplicateRequest, err)
}
