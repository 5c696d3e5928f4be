package transaction

import (
	"sync"
)

// Observer receives every snapshot a saga emits, in transition order.
// The final delivery for a run is always its terminal snapshot.
// OnRecord is called synchronously from Run, so implementations should
// return promptly.
type Observer interface {
	OnRecord(rec Record)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Record)

// OnRecord implements the Observer interface for ObserverFunc.
func (f ObserverFunc) OnRecord(rec Record) {
	f(rec)
}

// watcherBuffer comfortably holds every snapshot a single run can emit
// (PENDING, at most one intermediate, one terminal).
const watcherBuffer = 4

// Watcher is a channel-backed Observer for following a single saga
// run. It exposes the stream of snapshots plus the polling view from
// the observation contract: the last snapshot, an in-progress flag,
// and the terminal error string.
//
// A Watcher observes one run; the snapshot channel is closed after the
// terminal snapshot, so consumers can range over Snapshots(). Create a
// fresh Watcher for each run.
type Watcher struct {
	mu   sync.Mutex
	ch   chan Record
	last Record
	seen bool
	done bool
}

// NewWatcher creates a Watcher ready to register via WithObserver.
func NewWatcher() *Watcher {
	return &Watcher{
		ch: make(chan Record, watcherBuffer),
	}
}

// OnRecord implements the Observer interface for Watcher.
func (w *Watcher) OnRecord(rec Record) {
	w.mu.Lock()
	if w.done {
		// The run this Watcher followed is finished; ignore strays.
		w.mu.Unlock()
		return
	}
	w.seen = true
	w.last = rec
	terminal := rec.State.Terminal()
	if terminal {
		w.done = true
	}
	w.mu.Unlock()

	w.ch <- rec
	if terminal {
		close(w.ch)
	}
}

// Snapshots returns the stream of snapshots in transition order. The
// channel is closed after the terminal snapshot is delivered.
func (w *Watcher) Snapshots() <-chan Record {
	return w.ch
}

// Last returns the most recent snapshot and whether one has been
// observed yet.
func (w *Watcher) Last() (Record, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.last, w.seen
}

// InProgress reports whether the run has started but not yet reached a
// terminal state.
func (w *Watcher) InProgress() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.seen && !w.done
}

// Err returns the error string of the terminal snapshot, or "" if the
// run has not finished or finished without failure.
func (w *Watcher) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.done {
		return ""
	}
	return w.last.Error
}
