package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySuccessPath(t *testing.T) {
	start := time.Now()
	rec := newRecord("O1", start)
	assert.Equal(t, StatePending, rec.State)
	assert.Empty(t, rec.Error)

	rec, err := apply(rec, EventFulfillSucceeded, "")
	require.NoError(t, err)
	assert.Equal(t, StateFulfillmentSuccess, rec.State)
	assert.Empty(t, rec.Error)

	rec, err = apply(rec, EventMACSucceeded, "")
	require.NoError(t, err)
	assert.Equal(t, StateMACSuccess, rec.State)
	assert.Empty(t, rec.Error)

	// Timestamp is set once at creation and never updated.
	assert.Equal(t, start, rec.Timestamp)
	assert.Equal(t, "O1", rec.OrderID)
}

func TestApplyFailureCarriesMessage(t *testing.T) {
	rec := newRecord("O2", time.Now())

	failed, err := apply(rec, EventFulfillFailed, "no stock")
	require.NoError(t, err)
	assert.Equal(t, StateFulfillmentFailed, failed.State)
	assert.Equal(t, "no stock", failed.Error)
}

func TestApplyFailureRequiresMessage(t *testing.T) {
	rec := newRecord("O2", time.Now())

	_, err := apply(rec, EventFulfillFailed, "")
	require.Error(t, err, "a failed state without a message breaks the error invariant")
}

func TestApplyTerminalRejectsEvents(t *testing.T) {
	rec := newRecord("O3", time.Now())
	rec, err := apply(rec, EventFulfillFailed, "no stock")
	require.NoError(t, err)
	require.True(t, rec.State.Terminal())

	_, err = apply(rec, EventFulfillSucceeded, "")
	assert.Error(t, err, "terminal snapshots must not transition")
}

func TestApplyDoesNotMutatePrevious(t *testing.T) {
	prev := newRecord("O4", time.Now())
	next, err := apply(prev, EventFulfillSucceeded, "")
	require.NoError(t, err)

	assert.Equal(t, StatePending, prev.State, "snapshots are immutable values")
	assert.Equal(t, StateFulfillmentSuccess, next.State)
}
