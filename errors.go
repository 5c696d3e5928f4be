package transaction

import (
	"fmt"
)

// InvalidInputError reports a malformed order identifier. It is
// rejected before any snapshot is emitted or any remote call is made;
// it is a precondition failure, not a saga state.
type InvalidInputError struct {
	OrderID string
	Reason  error
}

// Error implements the error interface for InvalidInputError.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid order id %q: %v", e.OrderID, e.Reason)
}

// Unwrap returns the underlying validation failure.
func (e *InvalidInputError) Unwrap() error {
	return e.Reason
}

// faultMessage formats the generic message used when a remote
// operation faults instead of returning an OperationResult. The prefix
// keeps faults distinguishable from business refusals in history.
func faultMessage(operation string, cause any) string {
	return fmt.Sprintf("unexpected fault in %s: %v", operation, cause)
}

// composeFailure merges a MAC failure with the failure of its
// compensating rollback, so the consumer learns about both causes.
func composeFailure(macMsg, rollbackMsg string) string {
	return fmt.Sprintf("%s (Rollback failed: %s)", macMsg, rollbackMsg)
}
