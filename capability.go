package transaction

import (
	"context"
	"encoding/json"
	"fmt"
)

// OperationResult is the uniform response shape returned by every
// remote operation. A refusal is expressed as Success=false with a
// Message; Data is an opaque payload the coordinator never inspects.
type OperationResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Capability is the contract implemented by the two external
// subsystems the saga coordinates. The coordinator knows nothing about
// the transport behind it; implementations own timeouts, auth, and
// wire-level concerns.
//
// Each operation fails in one of two ways: by returning Success=false
// with a message (a business refusal), or by returning a non-nil error
// (a transport fault). The orchestrator treats a fault like a refusal
// carrying a generic message.
type Capability interface {
	// Fulfill commits the fulfillment step for the order.
	Fulfill(ctx context.Context, orderID string) (OperationResult, error)

	// MAC commits the MAC step for the order.
	MAC(ctx context.Context, orderID string) (OperationResult, error)

	// RollbackFulfillment compensates a previously committed
	// fulfillment. The orchestrator calls it at most once per run,
	// only after MAC has failed.
	RollbackFulfillment(ctx context.Context, orderID string) (OperationResult, error)
}

// OperationFunc is the function form of a single remote operation.
type OperationFunc func(ctx context.Context, orderID string) (OperationResult, error)

// CapabilityFuncs is a Capability assembled from ordinary functions,
// convenient for tests and for callers that already have the three
// operations as closures. A nil function reports a fault when called.
type CapabilityFuncs struct {
	FulfillFunc  OperationFunc
	MACFunc      OperationFunc
	RollbackFunc OperationFunc
}

// Fulfill implements the Capability interface for CapabilityFuncs.
func (c *CapabilityFuncs) Fulfill(ctx context.Context, orderID string) (OperationResult, error) {
	return callFunc(ctx, "fulfill", c.FulfillFunc, orderID)
}

// MAC implements the Capability interface for CapabilityFuncs.
func (c *CapabilityFuncs) MAC(ctx context.Context, orderID string) (OperationResult, error) {
	return callFunc(ctx, "mac", c.MACFunc, orderID)
}

// RollbackFulfillment implements the Capability interface for CapabilityFuncs.
func (c *CapabilityFuncs) RollbackFulfillment(ctx context.Context, orderID string) (OperationResult, error) {
	return callFunc(ctx, "rollback_fulfillment", c.RollbackFunc, orderID)
}

func callFunc(ctx context.Context, name string, fn OperationFunc, orderID string) (OperationResult, error) {
	if fn == nil {
		return OperationResult{}, fmt.Errorf("operation %s not implemented", name)
	}
	return fn(ctx, orderID)
}
