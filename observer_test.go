package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFollowsRun(t *testing.T) {
	watcher := NewWatcher()

	orch, err := New(scripted(&counts{},
		ok,
		func() (OperationResult, error) { return refuse("card declined") },
		ok,
	), WithObserver(watcher))
	require.NoError(t, err)

	_, err = orch.Run(context.Background(), "O3")
	require.NoError(t, err)

	// The channel is closed after the terminal snapshot, so range ends.
	var states []State
	for rec := range watcher.Snapshots() {
		states = append(states, rec.State)
	}
	assert.Equal(t, []State{StatePending, StateFulfillmentSuccess, StateMACFailed}, states)

	last, seen := watcher.Last()
	require.True(t, seen)
	assert.Equal(t, StateMACFailed, last.State)
	assert.False(t, watcher.InProgress())
	assert.Equal(t, "card declined", watcher.Err())
}

func TestWatcherBeforeAnySnapshot(t *testing.T) {
	watcher := NewWatcher()

	_, seen := watcher.Last()
	assert.False(t, seen)
	assert.False(t, watcher.InProgress())
	assert.Empty(t, watcher.Err())
}

func TestWatcherInProgress(t *testing.T) {
	watcher := NewWatcher()

	watcher.OnRecord(newRecord("O1", time.Now()))
	assert.True(t, watcher.InProgress())
	assert.Empty(t, watcher.Err(), "error is only surfaced once terminal")

	terminal, err := apply(newRecord("O1", time.Now()), EventFulfillFailed, "no stock")
	require.NoError(t, err)
	watcher.OnRecord(terminal)

	assert.False(t, watcher.InProgress())
	assert.Equal(t, "no stock", watcher.Err())
}

func TestWatcherIgnoresSnapshotsAfterTerminal(t *testing.T) {
	watcher := NewWatcher()

	terminal, err := apply(newRecord("O1", time.Now()), EventFulfillFailed, "no stock")
	require.NoError(t, err)
	watcher.OnRecord(terminal)

	// A finished Watcher drops strays instead of reopening the stream.
	watcher.OnRecord(newRecord("O9", time.Now()))

	last, _ := watcher.Last()
	assert.Equal(t, "O1", last.OrderID)

	var got []Record
	for rec := range watcher.Snapshots() {
		got = append(got, rec)
	}
	require.Len(t, got, 1)
	assert.Equal(t, StateFulfillmentFailed, got[0].State)
}

func TestObserverFunc(t *testing.T) {
	var seen []State
	obs := ObserverFunc(func(rec Record) {
		seen = append(seen, rec.State)
	})

	obs.OnRecord(newRecord("O1", time.Now()))
	assert.Equal(t, []State{StatePending}, seen)
}

func TestTrackerLatestSnapshotWins(t *testing.T) {
	tracker := NewTracker()

	pending := newRecord("O1", time.Now())
	tracker.OnRecord(pending)

	rec, found := tracker.Lookup("O1")
	require.True(t, found)
	assert.Equal(t, StatePending, rec.State)
	assert.Equal(t, []string{"O1"}, tracker.InFlight())

	terminal, err := apply(pending, EventFulfillFailed, "no stock")
	require.NoError(t, err)
	tracker.OnRecord(terminal)

	rec, found = tracker.Lookup("O1")
	require.True(t, found)
	assert.Equal(t, StateFulfillmentFailed, rec.State)
	assert.Empty(t, tracker.InFlight())
	assert.Equal(t, 1, tracker.Len())
}

func TestTrackerUnknownOrder(t *testing.T) {
	tracker := NewTracker()

	_, found := tracker.Lookup("nope")
	assert.False(t, found)
	assert.Zero(t, tracker.Len())
}
