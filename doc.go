// Package transaction coordinates an order's progress across two
// independent remote subsystems (Fulfillment and MAC) using a
// sequential saga: commit step one, then step two; if step two fails,
// issue a compensating rollback of step one. It is a best-effort,
// in-process compensation pattern, not a two-phase commit protocol.
//
// Overview
//
//  1. Implement the Capability interface (or assemble one from
//     closures with CapabilityFuncs) for the three remote operations:
//     Fulfill, MAC, RollbackFulfillment. Transport, timeouts, and auth
//     live entirely behind this interface; wrap it in a
//     RetryCapability if single calls should be retried on faults.
//  2. Create an Orchestrator with New, registering observers for the
//     snapshot stream: a Watcher to follow a single run over a
//     channel, a Tracker to index the latest snapshot per order, or a
//     JournalObserver to persist history through a Journal
//     (MemoryJournal or FileJournal).
//  3. Call Run with an order id. Run emits an ordered sequence of
//     immutable Record snapshots, PENDING first and a terminal state
//     last, and returns the terminal Record. Saga failures surface in
//     the Record's Error field, never as a returned error.
//
// For a complete program, see examples/order_saga.
package transaction
