package transaction

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/tidwall/btree"
)

// Journal persists the snapshot history of sagas, keyed by order id.
// It is an observer-side sink: the orchestrator never reads from it
// and never depends on it, so persistence failures cannot affect a
// running saga.
type Journal interface {
	// Append adds a snapshot to the order's history. Appending after a
	// terminal snapshot is rejected: a finished saga's history is
	// stable.
	Append(ctx context.Context, rec Record) error

	// History returns the order's snapshots in transition order.
	History(ctx context.Context, orderID string) ([]Record, error)

	// Delete removes an order's history.
	Delete(ctx context.Context, orderID string) error
}

// appendGuard rejects appends to a history whose last snapshot is
// terminal. Shared by the journal implementations.
func appendGuard(history []Record, rec Record) error {
	if len(history) == 0 {
		return nil
	}
	if last := history[len(history)-1]; last.State.Terminal() {
		return fmt.Errorf(
			"transaction %s already reached terminal state %s", rec.OrderID, last.State,
		)
	}
	return nil
}

// MemoryJournal is an in-process Journal, ordered by order id so
// listings are deterministic. Suitable for tests and for callers that
// only need history for the life of the process.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries *btree.Map[string, []Record]
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		entries: btree.NewMap[string, []Record](16),
	}
}

// Append implements the Journal interface for MemoryJournal.
func (m *MemoryJournal) Append(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, _ := m.entries.Get(rec.OrderID)
	if err := appendGuard(history, rec); err != nil {
		return err
	}
	m.entries.Set(rec.OrderID, append(history, rec))
	return nil
}

// History implements the Journal interface for MemoryJournal.
func (m *MemoryJournal) History(ctx context.Context, orderID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history, ok := m.entries.Get(orderID)
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", orderID)
	}
	return append([]Record(nil), history...), nil
}

// Delete implements the Journal interface for MemoryJournal.
func (m *MemoryJournal) Delete(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Delete(orderID)
	return nil
}

// Orders returns every journaled order id in ascending order.
func (m *MemoryJournal) Orders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, m.entries.Len())
	m.entries.Scan(func(orderID string, _ []Record) bool {
		ids = append(ids, orderID)
		return true
	})
	return ids
}

// JournalObserver feeds the snapshot stream into a Journal. Appends
// are best-effort: a persistence failure is logged and dropped, never
// surfaced to the saga.
type JournalObserver struct {
	journal Journal
	log     logr.Logger
}

// NewJournalObserver creates an Observer writing to the given journal.
func NewJournalObserver(journal Journal, log logr.Logger) *JournalObserver {
	return &JournalObserver{
		journal: journal,
		log:     log,
	}
}

// OnRecord implements the Observer interface for JournalObserver.
func (j *JournalObserver) OnRecord(rec Record) {
	if err := j.journal.Append(context.Background(), rec); err != nil {
		j.log.Error(err, "failed to journal snapshot",
			"order_id", rec.OrderID, "state", rec.State.String())
	}
}
