package engine

import (
	"sync"

	"github.com/rota-app/rota/internal/state"
)

// actionQueue is a thread-safe FIFO queue of dispatched actions.
//
// The queue is unbounded so effect handlers can enqueue follow-on
// actions without blocking the dispatch loop. Thread-safety covers
// external dispatchers (CLI, effect goroutines) while the engine's Run
// loop dequeues.
//
// A buffered signal channel enables context-aware waiting in the Run
// loop; the buffer of 1 coalesces bursts of signals.
type actionQueue struct {
	mu      sync.Mutex
	actions []state.Action
	closed  bool
	signal  chan struct{}
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]state.Action, 0, 64),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue appends an action. Returns false if the queue is closed.
func (q *actionQueue) Enqueue(a state.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.actions = append(q.actions, a)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front action without blocking.
func (q *actionQueue) TryDequeue() (state.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return nil, false
	}
	a := q.actions[0]

	// Nil out the slot so the dequeued action's payload is collectable
	// while the backing array lives on.
	q.actions[0] = nil
	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}
	return a, true
}

// Wait returns the signal channel for select-based waiting. The
// channel closes when the queue closes, waking all waiters.
func (q *actionQueue) Wait() <-chan struct{} {
	return q.signal
}

// Closed reports whether Close has been called.
func (q *actionQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued actions.
func (q *actionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close marks the queue closed and wakes all waiters. Idempotent.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
