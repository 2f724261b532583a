package payment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/plutov/paypal/v4"
)

// PayPalCompleted is the terminal status of a captured PayPal order.
const PayPalCompleted = "COMPLETED"

// PayPalProvider wraps the PayPal Orders v2 API. The capture id returned by
// CaptureOrder is the refundable identifier.
type PayPalProvider struct {
	client *paypal.Client
}

func NewPayPalProvider(clientID, secret, apiBase string) (*PayPalProvider, error) {
	c, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, errors.Wrap(err, "paypal client")
	}
	return &PayPalProvider{client: c}, nil
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, amount float64, currency string) (string, string, error) {
	if amount <= 0 {
		return "", "", errors.Errorf("invalid amount: %.2f", amount)
	}

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture,
		[]paypal.PurchaseUnitRequest{{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    fmt.Sprintf("%.2f", amount),
			},
		}}, nil, nil)
	if err != nil {
		return "", "", errors.Wrap(err, "paypal create order")
	}

	approveURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
		}
	}
	return order.ID, approveURL, nil
}

func (p *PayPalProvider) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	capture, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return CaptureResult{}, errors.Wrap(err, "paypal capture order")
	}

	res := CaptureResult{Status: capture.Status}
	for _, unit := range capture.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, c := range unit.Payments.Captures {
			if c.ID != "" {
				res.ChargeID = c.ID
			}
		}
	}
	return res, nil
}

func (p *PayPalProvider) Refund(ctx context.Context, paymentID string, amount *float64, currency, reason string) (RefundResult, error) {
	req := paypal.RefundCaptureRequest{NoteToPayer: reason}
	if amount != nil {
		req.Amount = &paypal.Money{Currency: currency, Value: fmt.Sprintf("%.2f", *amount)}
	}

	ref, err := p.client.RefundCapture(ctx, paymentID, req)
	if err != nil {
		return RefundResult{}, errors.Wrap(err, "paypal refund capture")
	}
	return RefundResult{RefundID: ref.ID, Status: ref.Status}, nil
}
