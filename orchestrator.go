package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Orchestrator drives the two-step saga for an order: fulfill, then
// MAC, with a compensating rollback of fulfillment if MAC fails. It
// holds no per-order state between runs; every Run is independent and
// runs for different order ids may proceed concurrently.
type Orchestrator struct {
	capability Capability
	observers  []Observer
	log        logr.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for saga progress and fault
// reporting. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithObserver registers observers that receive every snapshot each
// run emits, in order. Observers are shared across runs; use a Tracker
// for cross-run bookkeeping and a fresh Watcher per run.
func WithObserver(observers ...Observer) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, observers...)
	}
}

// New creates an Orchestrator coordinating the given capability.
func New(capability Capability, opts ...Option) (*Orchestrator, error) {
	if capability == nil {
		return nil, errors.New("transaction: capability must not be nil")
	}

	o := &Orchestrator{
		capability: capability,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one saga for orderID and returns its terminal snapshot.
//
// The snapshot sequence always starts with PENDING and ends with a
// terminal state; every snapshot is delivered to the registered
// observers in order before Run returns. Saga failures are not
// returned as errors: they surface through the Error field of the
// terminal Record. The only errors Run raises are *InvalidInputError
// for a malformed order id and the context error when ctx is already
// cancelled before the saga starts; in both cases no snapshot is
// emitted and no remote call is made.
//
// A transport fault (non-nil error or panic from a capability call) is
// folded into a failed OperationResult and attributed to the operation
// in flight: a fulfill fault ends in FULFILLMENT_FAILED, while a MAC
// fault triggers the same compensation path as a MAC refusal and ends
// in MAC_FAILED. Once MAC has failed, the rollback call is shielded
// from caller cancellation so a committed fulfillment is never left
// without its compensating action.
func (o *Orchestrator) Run(ctx context.Context, orderID string) (Record, error) {
	if err := validateOrderID(orderID); err != nil {
		return Record{}, &InvalidInputError{OrderID: orderID, Reason: err}
	}
	if err := ctx.Err(); err != nil {
		// Cancelled before any remote call: clean no-op.
		return Record{}, err
	}

	log := o.log.WithValues("order_id", orderID, "run_id", uuid.NewString())

	rec := newRecord(orderID, time.Now())
	o.emit(log, rec)

	fulfill := o.call(ctx, log, "fulfill", o.capability.Fulfill, orderID)
	if !fulfill.Success {
		return o.transition(log, rec, EventFulfillFailed, fulfill.Message), nil
	}
	rec = o.transition(log, rec, EventFulfillSucceeded, "")

	mac := o.call(ctx, log, "mac", o.capability.MAC, orderID)
	if mac.Success {
		return o.transition(log, rec, EventMACSucceeded, ""), nil
	}

	// Fulfillment is committed and MAC is not: compensate exactly once.
	// WithoutCancel lets the rollback complete even if the caller has
	// already given up on the run.
	rollback := o.call(context.WithoutCancel(ctx), log, "rollback_fulfillment",
		o.capability.RollbackFulfillment, orderID)

	message := mac.Message
	if !rollback.Success {
		message = composeFailure(mac.Message, rollback.Message)
	}
	return o.transition(log, rec, EventMACFailed, message), nil
}

// call invokes a single remote operation, folding transport faults and
// panics into a failed OperationResult so every failure reaches the
// state machine in the same shape. A refusal with no message gets a
// generic one; failed snapshots always carry an error.
func (o *Orchestrator) call(ctx context.Context, log logr.Logger, operation string, fn OperationFunc, orderID string) (result OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("%v", r), "remote operation panicked", "operation", operation)
			result = OperationResult{Message: faultMessage(operation, r)}
		}
	}()

	res, err := fn(ctx, orderID)
	if err != nil {
		log.Error(err, "remote operation faulted", "operation", operation)
		return OperationResult{Message: faultMessage(operation, err)}
	}
	if !res.Success && res.Message == "" {
		res.Message = operation + " failed"
	}
	return res
}

// transition applies the reducer and emits the resulting snapshot. Run
// only ever drives events the machine allows, so a reducer error here
// is a bug in the orchestrator, not a runtime condition.
func (o *Orchestrator) transition(log logr.Logger, prev Record, event Event, errMsg string) Record {
	next, err := apply(prev, event, errMsg)
	if err != nil {
		panic(fmt.Errorf("transaction: illegal transition: %w", err))
	}
	o.emit(log, next)
	return next
}

func (o *Orchestrator) emit(log logr.Logger, rec Record) {
	log.V(1).Info("transaction snapshot", "state", rec.State.String(), "error", rec.Error)
	for _, obs := range o.observers {
		obs.OnRecord(rec)
	}
}
