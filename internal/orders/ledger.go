package orders

import (
	"context"
	"log"
	"math"
	"strings"
	"sync"
	"time"
)

// SettlementChecker asks the external authority whether the payment behind a
// fingerprint has settled. found=false means no matching record yet; err is
// reserved for transport or upstream failures.
type SettlementChecker interface {
	CheckByFingerprint(ctx context.Context, fingerprint string) (rec *SettlementRecord, found bool, err error)
}

// SettlementRecord is untrusted input from the settlement network; amount and
// currency must be validated against the stored order before any transition.
type SettlementRecord struct {
	Hash     string
	Amount   float64
	Currency string
}

// EventSink observes order lifecycle events. OrderPaid fires exactly once per
// order, on the PENDING->PAID transition. The context is the triggering
// request's, so sinks can pick up its request id.
type EventSink interface {
	OrderCreated(ctx context.Context, o *Order)
	OrderPaid(ctx context.Context, o *Order)
}

// amountTolerance absorbs float representation noise from the transport
// layer. 5.0001 matches 5.00; 5.01 does not.
const amountTolerance = 1e-4

// DegradedNote explains a PENDING answer given without consulting the
// settlement network because no credential is configured.
const DegradedNote = "settlement verification is not configured; order stays PENDING until a credential is set"

type StatusResult struct {
	Status   Status
	Amount   float64
	Currency Currency
	Note     string
}

// Ledger owns the in-memory id -> order mapping and mediates reconciliation.
// Construct one per process and inject it; it is safe for concurrent use.
type Ledger struct {
	mu   sync.RWMutex
	byID map[string]*Order

	checker SettlementChecker // nil enables degraded mode
	events  EventSink         // nil disables events
}

func NewLedger(checker SettlementChecker, events EventSink) *Ledger {
	return &Ledger{
		byID:    make(map[string]*Order),
		checker: checker,
		events:  events,
	}
}

func (l *Ledger) Register(ctx context.Context, o *Order) error {
	l.mu.Lock()
	if _, exists := l.byID[o.ID]; exists {
		l.mu.Unlock()
		return ErrDuplicateOrder
	}
	l.byID[o.ID] = o
	l.mu.Unlock()

	if l.events != nil {
		l.events.OrderCreated(ctx, o)
	}
	return nil
}

// Resolve answers the current status of an order, reconciling against the
// settlement network when needed. Once an order is PAID the network is never
// contacted again for it.
func (l *Ledger) Resolve(ctx context.Context, id string) (StatusResult, error) {
	l.mu.RLock()
	o, ok := l.byID[id]
	l.mu.RUnlock()
	if !ok {
		return StatusResult{}, ErrOrderNotFound
	}

	if l.status(o) == StatusPaid {
		return l.snapshot(o, ""), nil
	}

	if l.checker == nil {
		return l.snapshot(o, DegradedNote), nil
	}

	rec, found, err := l.checker.CheckByFingerprint(ctx, o.Fingerprint)
	if err != nil {
		// Full upstream detail stays in the server log; the caller gets an
		// opaque reconciliation error.
		log.Printf("settlement check failed: order=%s fingerprint=%s err=%v", o.ID, o.Fingerprint, err)
		return StatusResult{}, ErrReconciliation
	}

	if found && settlementMatches(o, rec) {
		if l.markPaid(o) && l.events != nil {
			l.events.OrderPaid(ctx, o)
		}
	}

	return l.snapshot(o, ""), nil
}

// markPaid is the check-then-set on the status field. Concurrent resolvers
// that both observe a settled record race here; only one wins.
func (l *Ledger) markPaid(o *Order) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !CanTransition(o.Status, StatusPaid) {
		return false
	}
	o.Status = StatusPaid
	return true
}

func settlementMatches(o *Order, rec *SettlementRecord) bool {
	if Currency(strings.ToUpper(strings.TrimSpace(rec.Currency))) != o.Currency {
		return false
	}
	return math.Abs(rec.Amount-o.Amount) <= amountTolerance
}

// EvictExpired drops PENDING orders whose payload validity window closed more
// than grace ago. PAID orders are kept. Returns how many were removed.
func (l *Ledger) EvictExpired(now time.Time, grace time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, o := range l.byID {
		if o.Status == StatusPending && now.After(o.ExpiresAt.Add(grace)) {
			delete(l.byID, id)
			n++
		}
	}
	return n
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

func (l *Ledger) status(o *Order) Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return o.Status
}

func (l *Ledger) snapshot(o *Order, note string) StatusResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return StatusResult{Status: o.Status, Amount: o.Amount, Currency: o.Currency, Note: note}
}
