// Package engine implements the dispatch pipeline at the heart of the
// scheduler: a single-writer loop that applies pure state transitions
// and then fans side effects out to asynchronous handlers.
//
// # Three-phase dispatch
//
// Every dispatched action runs three ordered phases:
//
//  1. Reduce - synchronously compute the next state via the pure
//     reducer and replace the current state. Never fails, never
//     performs I/O.
//  2. Publish - synchronously notify observers of (newState, action).
//     Anything triggered in phase 3 is enqueued after observers have
//     already seen the phase-1 result, so an effect's follow-up can
//     never render before the change that caused it.
//  3. Effect - run every registered middleware in its own goroutine
//     with the identical state snapshot captured at publish time.
//     Middleware may dispatch further actions; those join the same
//     FIFO queue and run their own three-phase cycles in order.
//
// # Ownership and concurrency
//
// The engine exclusively owns the current state, the change log, and
// the undo/redo stacks. All mutation funnels through Dispatch, and all
// mutation happens in the single Run loop goroutine, so there is no
// shared-memory race on these structures by construction. Middleware
// failures are caught per handler and converted into SideEffectFailed
// actions - never silently swallowed, never propagated as a panic
// across the dispatch boundary.
package engine
