package transaction

import (
	"fmt"
	"time"
)

// Record is an immutable snapshot of one order's saga progress. A run
// produces a short chain of Records, each derived from its predecessor
// by the apply reducer; nothing mutates a Record after it is emitted.
type Record struct {
	OrderID string `json:"order_id"`
	State   State  `json:"state"`
	// Timestamp is set once, when the saga starts, and carried through
	// every snapshot of the run.
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// newRecord creates the initial PENDING snapshot for a saga run.
func newRecord(orderID string, now time.Time) Record {
	return Record{
		OrderID:   orderID,
		State:     StatePending,
		Timestamp: now,
	}
}

// apply is the pure transition function: previous snapshot + event ->
// next snapshot. errMsg carries the failure message for events that
// land in a failed state and is ignored otherwise, keeping the
// invariant that Error is set if and only if the state is a failure.
func apply(prev Record, event Event, errMsg string) (Record, error) {
	if prev.State.Terminal() {
		return Record{}, fmt.Errorf(
			"transaction %s already terminal in state %s", prev.OrderID, prev.State,
		)
	}

	nextState, err := prev.State.next(event)
	if err != nil {
		return Record{}, err
	}

	next := Record{
		OrderID:   prev.OrderID,
		State:     nextState,
		Timestamp: prev.Timestamp,
	}
	if nextState.Failed() {
		if errMsg == "" {
			return Record{}, fmt.Errorf(
				"transition to %s requires a failure message", nextState,
			)
		}
		next.Error = errMsg
	}

	return next, nil
}
