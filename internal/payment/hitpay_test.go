package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHitPayCaptureOrder_PollsUntilCompleted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-BUSINESS-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if n < 3 {
			fmt.Fprint(w, `{"id":"req_1","status":"pending"}`)
			return
		}
		fmt.Fprint(w, `{"id":"req_1","status":"completed","payments":[{"id":"charge_9","status":"succeeded"}]}`)
	}))
	defer srv.Close()

	p := NewHitPayProvider("test-key", srv.URL, "salt", "", "")
	p.SetPolling(5, time.Millisecond)

	res, err := p.CaptureOrder(context.Background(), "req_1")
	if err != nil {
		t.Fatalf("expected capture to succeed, got %v", err)
	}
	if res.Status != HitPayCompleted {
		t.Fatalf("expected completed status, got %q", res.Status)
	}
	if res.ChargeID != "charge_9" {
		t.Fatalf("expected charge id from payments array, got %q", res.ChargeID)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 polls, got %d", calls)
	}
}

func TestHitPayCaptureOrder_PendingAfterBoundedPoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"req_2","status":"pending"}`)
	}))
	defer srv.Close()

	p := NewHitPayProvider("test-key", srv.URL, "salt", "", "")
	p.SetPolling(3, time.Millisecond)

	_, err := p.CaptureOrder(context.Background(), "req_2")
	if err != ErrPaymentPending {
		t.Fatalf("expected ErrPaymentPending, got %v", err)
	}
}

func TestHitPayCaptureOrder_FailedIsTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"id":"req_3","status":"failed"}`)
	}))
	defer srv.Close()

	p := NewHitPayProvider("test-key", srv.URL, "salt", "", "")
	p.SetPolling(5, time.Millisecond)

	if _, err := p.CaptureOrder(context.Background(), "req_3"); err == nil {
		t.Fatal("expected error for failed payment")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("failed status should stop polling, got %d calls", calls)
	}
}

func TestHitPayResolveCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"req_4","status":"completed","payments":[{"id":"charge_44","status":"completed"}]}`)
	}))
	defer srv.Close()

	p := NewHitPayProvider("test-key", srv.URL, "salt", "", "")
	chargeID, err := p.ResolveCharge(context.Background(), "req_4")
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if chargeID != "charge_44" {
		t.Fatalf("unexpected charge id %q", chargeID)
	}
}

func TestHitPayVerifyWebhook(t *testing.T) {
	p := NewHitPayProvider("key", "https://api.example.com", "shared-salt", "", "")

	body := []byte(`{"payment_id":"charge_1","payment_request_id":"req_1","status":"completed"}`)
	mac := hmac.New(sha256.New, []byte("shared-salt"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !p.VerifyWebhook(body, sig) {
		t.Fatal("expected valid signature to verify")
	}
	if p.VerifyWebhook(body, "deadbeef") {
		t.Fatal("expected bogus signature to be rejected")
	}
	if p.VerifyWebhook(append(body, '!'), sig) {
		t.Fatal("expected tampered body to be rejected")
	}
}
