package checkout

import (
	"sync"
)

// Marker records a captured external order so later steps can verify it.
type Marker struct {
	ExternalID string
	ChargeID   string
}

// Guard is the per-user idempotency store for the checkout flow. A capture
// endpoint remembers the external order id it just captured; the success
// endpoint consumes the marker, so a page reload cannot capture or confirm
// the same payment twice. Confirmed ids are kept so reloads of a success URL
// are recognized and skipped.
type Guard struct {
	mu        sync.Mutex
	captured  map[int]map[string]Marker
	confirmed map[int]map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{
		captured:  make(map[int]map[string]Marker),
		confirmed: make(map[int]map[string]struct{}),
	}
}

// Remember stores a captured marker for the user under the given kind
// ("paypal", "hitpay", ...), replacing any previous one.
func (g *Guard) Remember(userID int, kind string, m Marker) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captured[userID] == nil {
		g.captured[userID] = make(map[string]Marker)
	}
	g.captured[userID][kind] = m
}

// Consume removes and returns the user's marker for the kind.
func (g *Guard) Consume(userID int, kind string) (Marker, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.captured[userID][kind]
	if ok {
		delete(g.captured[userID], kind)
	}
	return m, ok
}

// MarkConfirmed records that an external order id has produced an order.
func (g *Guard) MarkConfirmed(userID int, externalID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.confirmed[userID] == nil {
		g.confirmed[userID] = make(map[string]struct{})
	}
	g.confirmed[userID][externalID] = struct{}{}
}

// Confirmed reports whether the external order id was already confirmed.
func (g *Guard) Confirmed(userID int, externalID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.confirmed[userID][externalID]
	return ok
}
