package transaction

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryCapability decorates a Capability with retry-with-backoff
// around each single remote call. Only transport faults (a non-nil
// error) are retried; a result with Success=false is a business
// outcome and passes through untouched. The orchestrator itself never
// retries, so this decorator is the place to add resilience at the
// capability boundary.
type RetryCapability struct {
	inner    Capability
	attempts uint
	delay    time.Duration
}

// NewRetryCapability wraps inner so each operation is attempted up to
// `attempts` times, with exponential backoff starting at `delay`.
func NewRetryCapability(inner Capability, attempts uint, delay time.Duration) *RetryCapability {
	return &RetryCapability{
		inner:    inner,
		attempts: attempts,
		delay:    delay,
	}
}

// Fulfill implements the Capability interface for RetryCapability.
func (r *RetryCapability) Fulfill(ctx context.Context, orderID string) (OperationResult, error) {
	return r.do(ctx, r.inner.Fulfill, orderID)
}

// MAC implements the Capability interface for RetryCapability.
func (r *RetryCapability) MAC(ctx context.Context, orderID string) (OperationResult, error) {
	return r.do(ctx, r.inner.MAC, orderID)
}

// RollbackFulfillment implements the Capability interface for RetryCapability.
func (r *RetryCapability) RollbackFulfillment(ctx context.Context, orderID string) (OperationResult, error) {
	return r.do(ctx, r.inner.RollbackFulfillment, orderID)
}

func (r *RetryCapability) do(ctx context.Context, fn OperationFunc, orderID string) (OperationResult, error) {
	var result OperationResult
	err := retry.Do(
		func() error {
			res, err := fn(ctx, orderID)
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return OperationResult{}, err
	}
	return result, nil
}
