package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// HitPay payment request statuses.
const (
	HitPayCompleted = "completed"
	HitPayPending   = "pending"
	HitPayFailed    = "failed"
	HitPayExpired   = "expired"
)

// HitPaySignatureHeader carries the webhook HMAC signature.
const HitPaySignatureHeader = "Hitpay-Signature"

// ErrPaymentPending is returned when the status poll exhausts its attempts
// without the payment reaching a terminal state.
var ErrPaymentPending = errors.New("hitpay payment still pending")

// HitPayProvider drives PayNow payments through the HitPay REST API. There is
// no Go SDK, so this is a thin hand-rolled client. The charge id needed for
// refunds is not known at creation time; CaptureOrder reports it when the
// status poll already sees a payment, otherwise the webhook or a later
// ResolveCharge lookup supplies it.
type HitPayProvider struct {
	apiKey      string
	apiBase     string
	webhookSalt string
	redirectURL string
	webhookURL  string

	httpClient   *http.Client
	pollAttempts int
	pollDelay    time.Duration
}

func NewHitPayProvider(apiKey, apiBase, webhookSalt, redirectURL, webhookURL string) *HitPayProvider {
	return &HitPayProvider{
		apiKey:       apiKey,
		apiBase:      strings.TrimRight(apiBase, "/"),
		webhookSalt:  webhookSalt,
		redirectURL:  redirectURL,
		webhookURL:   webhookURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		pollAttempts: 5,
		pollDelay:    2 * time.Second,
	}
}

type hitpayPaymentRequest struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	URL      string `json:"url"`
	Payments []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payments"`
}

func (p *HitPayProvider) CreateOrder(ctx context.Context, amount float64, currency string) (string, string, error) {
	if amount <= 0 {
		return "", "", errors.Errorf("invalid amount: %.2f", amount)
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%.2f", amount))
	form.Set("currency", currency)
	form.Set("reference_number", uuid.NewString())
	form.Set("payment_methods[]", "paynow_online")
	if p.redirectURL != "" {
		form.Set("redirect_url", p.redirectURL)
	}
	if p.webhookURL != "" {
		form.Set("webhook", p.webhookURL)
	}

	var created hitpayPaymentRequest
	if err := p.do(ctx, http.MethodPost, "/v1/payment-requests", form, &created); err != nil {
		return "", "", errors.Wrap(err, "hitpay create payment request")
	}
	return created.ID, created.URL, nil
}

// CaptureOrder polls the payment request until it reports a terminal status.
// Fixed attempt count, fixed delay, no backoff; the webhook covers payments
// that complete after the poll gives up.
func (p *HitPayProvider) CaptureOrder(ctx context.Context, orderID string) (CaptureResult, error) {
	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return CaptureResult{}, ctx.Err()
			case <-time.After(p.pollDelay):
			}
		}

		req, err := p.fetch(ctx, orderID)
		if err != nil {
			return CaptureResult{}, err
		}

		switch req.Status {
		case HitPayCompleted:
			return CaptureResult{Status: HitPayCompleted, ChargeID: completedPaymentID(req)}, nil
		case HitPayFailed, HitPayExpired:
			return CaptureResult{}, errors.Errorf("hitpay payment %s: %s", orderID, req.Status)
		}
	}
	return CaptureResult{}, ErrPaymentPending
}

// ResolveCharge looks up the payment request to discover the real charge id
// once the payment has gone through.
func (p *HitPayProvider) ResolveCharge(ctx context.Context, orderID string) (string, error) {
	req, err := p.fetch(ctx, orderID)
	if err != nil {
		return "", err
	}
	if id := completedPaymentID(req); id != "" {
		return id, nil
	}
	return "", errors.Errorf("hitpay payment request %s has no completed charge", orderID)
}

func (p *HitPayProvider) Refund(ctx context.Context, paymentID string, amount *float64, currency, reason string) (RefundResult, error) {
	form := url.Values{}
	form.Set("payment_id", paymentID)
	if amount != nil {
		form.Set("amount", fmt.Sprintf("%.2f", *amount))
	}

	var refunded struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		AmountRefunded string `json:"amount_refunded"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/refund", form, &refunded); err != nil {
		return RefundResult{}, errors.Wrap(err, "hitpay refund")
	}
	status := refunded.Status
	if status == "" {
		status = "succeeded"
	}
	return RefundResult{RefundID: refunded.ID, Status: status}, nil
}

// VerifyWebhook checks the HMAC-SHA256 signature of a raw webhook body
// against the shared salt using a constant-time comparison.
func (p *HitPayProvider) VerifyWebhook(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.webhookSalt))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (p *HitPayProvider) fetch(ctx context.Context, orderID string) (hitpayPaymentRequest, error) {
	var req hitpayPaymentRequest
	err := p.do(ctx, http.MethodGet, "/v1/payment-requests/"+url.PathEscape(orderID), nil, &req)
	if err != nil {
		return hitpayPaymentRequest{}, errors.Wrap(err, "hitpay payment request status")
	}
	return req, nil
}

func (p *HitPayProvider) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, p.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-BUSINESS-API-KEY", p.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("hitpay %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

func completedPaymentID(req hitpayPaymentRequest) string {
	for _, p := range req.Payments {
		if p.Status == HitPayCompleted || p.Status == "succeeded" {
			return p.ID
		}
	}
	return ""
}

// SetPolling overrides the status poll bounds (tests use short delays).
func (p *HitPayProvider) SetPolling(attempts int, delay time.Duration) {
	if attempts > 0 {
		p.pollAttempts = attempts
	}
	p.pollDelay = delay
}
