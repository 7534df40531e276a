package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/state"
	"github.com/rota-app/rota/internal/undo"
)

// Dispatch enqueues an action for processing. Returns false once the
// engine has been stopped.
type Dispatch func(a state.Action) bool

// Middleware is an asynchronous side-effect handler. It receives the
// state snapshot captured when its action was published, the action,
// and a dispatch function for follow-up actions. Errors are converted
// into SideEffectFailed actions by the engine; return an *EffectError
// to attach the failed operation name and change-log seq.
type Middleware func(ctx context.Context, snap state.State, a state.Action, dispatch Dispatch) error

// Observer receives (newState, sourceAction) synchronously in phase 2.
// Observers must treat the state as read-only and must not block.
type Observer func(s state.State, a state.Action)

// Engine is the single-writer dispatch loop.
//
// Thread-safety model:
//   - Dispatch, State, Undo, Redo: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Use, Subscribe: before Run only
//
// INVARIANTS:
//   - reducer applications never interleave: for actions A then B,
//     A's reduce+publish fully complete before B's reduce begins
//   - middleware registration order never changes after Run starts
type Engine struct {
	queue *actionQueue

	mu      sync.RWMutex
	current state.State

	log     *changelog.Log
	history *undo.Controller

	middleware []Middleware
	observers  []Observer

	persistence PersistenceGateway
	calendar    CalendarGateway

	ids changelog.IDGenerator
	now func() time.Time
	loc *time.Location

	// pending counts queued actions plus running effects; Drain waits
	// for it to hit zero.
	pending atomic.Int64
	idle    chan struct{}
	wg      sync.WaitGroup
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithInitialState seeds the engine with a previously loaded state.
func WithInitialState(s state.State) Option {
	return func(e *Engine) { e.current = s }
}

// WithLog supplies a change log rebuilt from persistence, so sequence
// numbers resume where the last process left off.
func WithLog(l *changelog.Log) Option {
	return func(e *Engine) { e.log = l }
}

// WithPersistence wires the durable storage gateway.
func WithPersistence(gw PersistenceGateway) Option {
	return func(e *Engine) { e.persistence = gw }
}

// WithCalendar wires the device calendar gateway.
func WithCalendar(gw CalendarGateway) Option {
	return func(e *Engine) { e.calendar = gw }
}

// WithIDGenerator overrides the entry ID source, for deterministic tests.
func WithIDGenerator(ids changelog.IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithNow overrides the timestamp source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone shifts are expanded in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// New creates an engine and registers the built-in middleware
// (history recording, state persistence, calendar sync). Additional
// middleware can be added with Use before Run.
func New(opts ...Option) *Engine {
	e := &Engine{
		queue:   newActionQueue(),
		current: state.New(),
		ids:     changelog.UUIDv7Generator{},
		now:     time.Now,
		loc:     time.Local,
		idle:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = changelog.NewLog()
	}
	e.history = undo.NewController(e.log, e.ids, e.current.Settings.UndoDepth, undo.WithNow(e.now))
	// Undo history is derived from the log, so it survives restarts.
	e.history.Rebuild(e.log.Entries())

	e.middleware = append(e.middleware, e.historyMiddleware())
	if e.persistence != nil {
		e.middleware = append(e.middleware, e.persistMiddleware())
	}
	if e.calendar != nil {
		e.middleware = append(e.middleware, e.calendarMiddleware())
	}
	return e
}

// Use registers an additional middleware. Must be called before Run.
func (e *Engine) Use(mw Middleware) {
	e.middleware = append(e.middleware, mw)
}

// Subscribe registers a phase-2 observer. Must be called before Run.
func (e *Engine) Subscribe(obs Observer) {
	e.observers = append(e.observers, obs)
}

// State returns the current state snapshot. Safe from any goroutine.
func (e *Engine) State() state.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Log returns the engine-owned change log. External callers get
// read-only use only; appends are the engine's.
func (e *Engine) Log() *changelog.Log {
	return e.log
}

// History returns the undo/redo controller for inspection.
func (e *Engine) History() *undo.Controller {
	return e.history
}

// Dispatch submits an action to the queue. Safe from any goroutine.
// Returns false if the engine has been stopped.
func (e *Engine) Dispatch(a state.Action) bool {
	if !e.queue.Enqueue(a) {
		return false
	}
	e.pending.Add(1)
	return true
}

// Run starts the single-writer dispatch loop and blocks until the
// context is cancelled or Stop is called and the queue has drained.
//
// Must be called from exactly ONE goroutine: every reduce, publish,
// and effect spawn happens here, which is what makes the ordering
// guarantees hold.
//
// Middleware failures never stop the loop; they become
// SideEffectFailed actions and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("dispatch engine starting")

	for {
		a, ok := e.queue.TryDequeue()
		if ok {
			e.processAction(ctx, a)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("dispatch engine stopping: context cancelled")
			e.queue.Close()
			e.wg.Wait()
			return ctx.Err()

		case <-e.queue.Wait():
			// Either a new action arrived or the queue was closed;
			// a closed signal channel fires immediately every pass.
			if e.queue.Closed() && e.queue.Len() == 0 {
				slog.Info("dispatch engine stopping: queue closed")
				e.wg.Wait()
				return nil
			}
		}
	}
}

// Stop closes the queue; Run returns after processing what remains.
// Call Drain first when follow-up actions from in-flight effects must
// still be processed.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Drain blocks until no queued actions and no running effects remain.
// The engine keeps running; combine with Stop for a clean shutdown:
//
//	eng.Drain(ctx)
//	eng.Stop()
func (e *Engine) Drain(ctx context.Context) error {
	for {
		if e.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.idle:
		}
	}
}

// processAction runs the three dispatch phases for one action.
// Called only from the Run goroutine.
func (e *Engine) processAction(ctx context.Context, a state.Action) {
	defer e.done()

	// Phase 1: reduce.
	e.mu.Lock()
	next := state.Reduce(e.current, a)
	e.current = next
	e.mu.Unlock()

	slog.Debug("action reduced", "action", a.Name(), "version", next.Version)

	// Phase 2: publish. Observers see the new state before any effect
	// of this action can enqueue follow-ups.
	for _, obs := range e.observers {
		obs(next, a)
	}

	// Phase 3: effects. Every middleware gets the identical snapshot;
	// none observes a sibling's partial results from this cycle.
	for _, mw := range e.middleware {
		e.pending.Add(1)
		e.wg.Add(1)
		go e.runEffect(ctx, mw, next, a)
	}
}

func (e *Engine) runEffect(ctx context.Context, mw Middleware, snap state.State, a state.Action) {
	defer e.wg.Done()
	defer e.done()

	err := mw(ctx, snap, a, e.Dispatch)
	if err == nil {
		return
	}

	op := a.Name()
	var seq int64
	var ee *EffectError
	if errors.As(err, &ee) {
		if ee.Op != "" {
			op = ee.Op
		}
		seq = ee.Seq
	}
	slog.Error("effect failed", "action", a.Name(), "op", op, "seq", seq, "error", err)

	// A failure while handling a failure report is logged only,
	// otherwise two broken handlers would ping-pong forever.
	if _, isFailure := a.(state.SideEffectFailed); isFailure {
		return
	}
	e.Dispatch(state.SideEffectFailed{Op: op, Seq: seq, Message: err.Error()})
}

// done decrements pending and wakes Drain when the engine goes idle.
func (e *Engine) done() {
	if e.pending.Add(-1) == 0 {
		select {
		case e.idle <- struct{}{}:
		default:
		}
	}
}
