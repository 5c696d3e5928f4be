package transaction

import (
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Tracker is an Observer that keeps the most recent snapshot for every
// order it has seen. It is safe to share across concurrently running
// sagas; per-order snapshot order is preserved because each run emits
// its snapshots sequentially.
type Tracker struct {
	records *xsync.MapOf[string, Record]
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records: xsync.NewMapOf[string, Record](),
	}
}

// OnRecord implements the Observer interface for Tracker.
func (t *Tracker) OnRecord(rec Record) {
	t.records.Store(rec.OrderID, rec)
}

// Lookup returns the latest snapshot for an order id.
func (t *Tracker) Lookup(orderID string) (Record, bool) {
	return t.records.Load(orderID)
}

// InFlight returns the order ids whose sagas have not reached a
// terminal state, sorted for deterministic output.
func (t *Tracker) InFlight() []string {
	var ids []string
	t.records.Range(func(orderID string, rec Record) bool {
		if !rec.State.Terminal() {
			ids = append(ids, orderID)
		}
		return true
	})
	sort.Strings(ids)
	return ids
}

// Len returns the number of orders the Tracker has seen.
func (t *Tracker) Len() int {
	return t.records.Size()
}
