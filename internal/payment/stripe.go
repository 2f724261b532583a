package payment

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider collects card payments through Stripe Checkout sessions.
// The session id doubles as the external order id; the refundable charge id
// is the session's payment intent.
type StripeProvider struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripeProvider(secretKey, successURL, cancelURL string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, successURL: successURL, cancelURL: cancelURL}
}

func (p *StripeProvider) CreateOrder(ctx context.Context, amount float64, currency string) (string, string, error) {
	if amount <= 0 {
		return "", "", errors.Errorf("invalid amount: %.2f", amount)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currency)),
				UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Supermarket order"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", "", errors.Wrap(err, "stripe create checkout session")
	}
	return sess.ID, sess.URL, nil
}

func (p *StripeProvider) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.Get(orderID, params)
	if err != nil {
		return CaptureResult{}, errors.Wrap(err, "stripe retrieve checkout session")
	}

	res := CaptureResult{Status: string(sess.PaymentStatus)}
	if sess.PaymentIntent != nil {
		res.ChargeID = sess.PaymentIntent.ID
	}
	return res, nil
}

func (p *StripeProvider) Refund(ctx context.Context, paymentID string, amount *float64, currency, reason string) (RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if amount != nil {
		params.Amount = stripe.Int64(int64(math.Round(*amount * 100)))
	}

	ref, err := p.api.Refunds.New(params)
	if err != nil {
		return RefundResult{}, errors.Wrap(err, "stripe refund")
	}
	return RefundResult{RefundID: ref.ID, Status: string(ref.Status)}, nil
}

// StripePaid is the terminal payment_status of a completed checkout session.
const StripePaid = "paid"
