package transaction

import (
	"encoding/json"
	"fmt"
)

// State represents the progress of one order's saga.
type State int

const (
	// StatePending is the initial state, emitted before any remote call.
	StatePending State = iota
	// StateFulfillmentSuccess means fulfillment committed; MAC is next.
	StateFulfillmentSuccess
	// StateFulfillmentFailed is terminal: fulfillment was refused, nothing to undo.
	StateFulfillmentFailed
	// StateMACSuccess is terminal: both steps committed.
	StateMACSuccess
	// StateMACFailed is terminal: MAC was refused and a compensating
	// rollback of fulfillment has been attempted.
	StateMACFailed
)

// Terminal reports whether the saga performs no further transitions
// from this state.
func (s State) Terminal() bool {
	switch s {
	case StateFulfillmentFailed, StateMACSuccess, StateMACFailed:
		return true
	}
	return false
}

// Failed reports whether this state carries a failure. Snapshots in a
// failed state always have a non-empty error message.
func (s State) Failed() bool {
	return s == StateFulfillmentFailed || s == StateMACFailed
}

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateFulfillmentSuccess:
		return "FULFILLMENT_SUCCESS"
	case StateFulfillmentFailed:
		return "FULFILLMENT_FAILED"
	case StateMACSuccess:
		return "MAC_SUCCESS"
	case StateMACFailed:
		return "MAC_FAILED"
	default:
		return fmt.Sprintf("Unknown State: %d", s)
	}
}

// MarshalJSON implements the json.Marshaler interface for State.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for State.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	switch str {
	case "PENDING":
		*s = StatePending
	case "FULFILLMENT_SUCCESS":
		*s = StateFulfillmentSuccess
	case "FULFILLMENT_FAILED":
		*s = StateFulfillmentFailed
	case "MAC_SUCCESS":
		*s = StateMACSuccess
	case "MAC_FAILED":
		*s = StateMACFailed
	default:
		return fmt.Errorf("invalid State: %s", str)
	}

	return nil
}

// Event identifies an occurrence that drives a saga transition.
type Event int

const (
	EventFulfillSucceeded Event = iota
	EventFulfillFailed
	EventMACSucceeded
	EventMACFailed
)

// String returns the string representation of the Event.
func (e Event) String() string {
	switch e {
	case EventFulfillSucceeded:
		return "fulfill_succeeded"
	case EventFulfillFailed:
		return "fulfill_failed"
	case EventMACSucceeded:
		return "mac_succeeded"
	case EventMACFailed:
		return "mac_failed"
	default:
		return fmt.Sprintf("Unknown Event: %d", e)
	}
}

// next returns the state that follows s after recording the given event.
// The answer comes from the transition graph, so the graph stays the
// single source of truth for the state machine.
func (s State) next(event Event) (State, error) {
	to, ok := machine.next(s, event)
	if !ok {
		return s, fmt.Errorf(
			"illegal event %s for current state %s", event, s,
		)
	}
	return to, nil
}
