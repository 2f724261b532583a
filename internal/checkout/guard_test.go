package checkout

import "testing"

func TestGuard_ConsumeIsOneShot(t *testing.T) {
	g := NewGuard()
	g.Remember(1, "paypal", Marker{ExternalID: "PP-1", ChargeID: "CAP-1"})

	m, ok := g.Consume(1, "paypal")
	if !ok || m.ExternalID != "PP-1" || m.ChargeID != "CAP-1" {
		t.Fatalf("expected stored marker, got %+v ok=%v", m, ok)
	}

	if _, ok := g.Consume(1, "paypal"); ok {
		t.Fatal("second consume must miss")
	}
}

func TestGuard_MarkersAreScopedPerUser(t *testing.T) {
	g := NewGuard()
	g.Remember(1, "hitpay", Marker{ExternalID: "req_1"})

	if _, ok := g.Consume(2, "hitpay"); ok {
		t.Fatal("marker must not leak across users")
	}
	if _, ok := g.Consume(1, "hitpay"); !ok {
		t.Fatal("owner should still find the marker")
	}
}

func TestGuard_Confirmed(t *testing.T) {
	g := NewGuard()
	if g.Confirmed(1, "sess_1") {
		t.Fatal("nothing confirmed yet")
	}
	g.MarkConfirmed(1, "sess_1")
	if !g.Confirmed(1, "sess_1") {
		t.Fatal("expected sess_1 confirmed")
	}
	if g.Confirmed(2, "sess_1") {
		t.Fatal("confirmation must be per user")
	}
}
