package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nimbus-hab/nimbus/internal/logging"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Handler advances one step of phase-specific mission logic and reports
// an outcome. Handlers never block indefinitely: awaited hardware
// conditions use bounded polling via Stay so the engine keeps the
// ability to escalate promptly.
type Handler interface {
	Phase() domain.Phase
	Tick(ctx context.Context, m *Context) domain.Outcome
}

// Engine owns the phase record, enforces the transition graph,
// sequences persistence before side effects, dispatches to handlers and
// escalates failures. It is the only component allowed to mutate the
// phase record.
type Engine struct {
	store    ports.StateStore
	handlers map[domain.Phase]Handler
	mctx     *Context
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	clock    func() time.Time

	// recordMu guards record for external observers; within Run the
	// engine is the single writer.
	recordMu sync.RWMutex
	record   *domain.PhaseRecord
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks attaches lifecycle hooks (metrics, status server).
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// NewEngine builds an engine over the given store, handlers and shared
// context. Every phase in the enumeration must have a handler; a
// missing handler is a wiring bug and fails construction.
func NewEngine(store ports.StateStore, mctx *Context, handlers []Handler, opts ...Option) (*Engine, error) {
	if err := domain.ValidateGraph(); err != nil {
		return nil, err
	}
	byPhase := make(map[domain.Phase]Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := byPhase[h.Phase()]; dup {
			return nil, fmt.Errorf("duplicate handler for phase %s", h.Phase())
		}
		byPhase[h.Phase()] = h
	}
	for _, p := range domain.Phases {
		if _, ok := byPhase[p]; !ok {
			return nil, fmt.Errorf("no handler registered for phase %s", p)
		}
	}
	e := &Engine{
		store:    store,
		handlers: byPhase,
		mctx:     mctx,
		logger:   logging.NewNop(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Record returns a copy of the current phase record for observers (the
// status server, the report command). Never the live record.
func (e *Engine) Record() *domain.PhaseRecord {
	e.recordMu.RLock()
	defer e.recordMu.RUnlock()
	if e.record == nil {
		return nil
	}
	return e.record.Clone()
}

func (e *Engine) setRecord(r *domain.PhaseRecord) {
	e.recordMu.Lock()
	e.record = r
	e.recordMu.Unlock()
}

// Run drives the mission to completion. It does not return until
// ShutDown has run, the context is canceled, or a hard fault makes even
// SafeMode unreachable.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.boot(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			e.mctx.Tasks.CancelAll()
			return err
		}

		phase := e.record.Phase
		if phase.Terminal() {
			return e.runShutdown(ctx)
		}

		for _, r := range e.mctx.Tasks.Drain() {
			e.logger.Warn("background task failed", "scope", r.Scope, "task", r.Name, "error", r.Err)
		}

		handler := e.handlers[phase]
		outcome := handler.Tick(ctx, e.mctx)

		switch outcome.Kind {
		case domain.OutcomeContinue:
			if !domain.CanTransition(phase, outcome.Next) {
				// A handler asking for an edge outside the static
				// graph is a programming-invariant violation, not a
				// mission error.
				panic(fmt.Sprintf("illegal transition %s -> %s", phase, outcome.Next))
			}
			if err := e.transition(ctx, outcome.Next, ""); err != nil {
				return err
			}

		case domain.OutcomeStay:
			e.wait(ctx, outcome.Backoff)

		case domain.OutcomeFail:
			if err := e.escalate(ctx, outcome.Err); err != nil {
				return err
			}
		}
	}
}

// boot loads the persisted image, or initializes the record. Corrupt
// and unreadable images resume at SafeMode: an ambiguous prior phase
// after an abnormal restart must never be resumed as if nothing
// happened.
func (e *Engine) boot(ctx context.Context) error {
	now := e.clock()
	loaded, err := e.store.Load(ctx)
	switch {
	case err == nil:
		e.logger.Info("resuming persisted phase", "phase", loaded.Phase, "entered_at", loaded.EnteredAt)
		e.setRecord(loaded.Advance(loaded.Phase, now))
	case errors.Is(err, domain.ErrNoImage):
		e.logger.Info("no persisted phase, starting fresh")
		e.setRecord(domain.NewPhaseRecord(domain.PhaseInit, now))
	default:
		// Corrupt image or unreadable storage: do not guess.
		e.logger.Error("persisted phase unreadable, entering safe mode", "error", err)
		e.setRecord(domain.NewPhaseRecord(domain.PhaseSafeMode, now))
	}

	if err := e.store.Save(ctx, e.record); err != nil {
		return domain.PersistenceError(e.record.Phase, fmt.Errorf("persisting boot phase: %w", err))
	}
	e.enterHooks(ctx, "", e.record.Phase, "")
	return nil
}

// transition commits the edge from the current phase to next. The
// durable write happens strictly before any phase-entry side effect and
// before the old phase's background tasks are released, so a crash
// anywhere in between still resumes consistently.
func (e *Engine) transition(ctx context.Context, next domain.Phase, reason string) error {
	from := e.record.Phase
	candidate := e.record.Advance(next, e.clock())

	if err := e.store.Save(ctx, candidate); err != nil {
		perr := domain.PersistenceError(from, fmt.Errorf("persisting transition to %s: %w", next, err))
		if next == domain.PhaseSafeMode {
			// Cannot even record the escalation. Resumability is gone;
			// abort rather than fly on with lying storage.
			return perr
		}
		e.logger.Error("transition persist failed, escalating", "from", from, "to", next, "error", err)
		return e.escalate(ctx, perr)
	}

	e.mctx.Tasks.CancelScope(PhaseScope(from))
	e.setRecord(candidate)

	e.logger.Info("phase transition", "from", from, "to", next, "attempt", candidate.Attempts[next])
	if e.hooks.OnPhaseLeave != nil {
		e.hooks.OnPhaseLeave(ctx, &domain.PhaseEvent{
			Timestamp: candidate.EnteredAt, Type: domain.EventPhaseLeave, From: from, To: next,
		})
	}
	e.enterHooks(ctx, from, next, reason)
	return nil
}

// escalate forces the mission into SafeMode after a handler failure.
// Inside SafeMode errors are absorbed; during ShutDown they are a hard
// fault.
func (e *Engine) escalate(ctx context.Context, cause error) error {
	phase := e.record.Phase
	e.logger.Error("phase failed", "phase", phase, "kind", domain.KindOf(cause), "error", cause)

	switch phase {
	case domain.PhaseSafeMode:
		// Already absorbing faults. Log and keep ticking; the bounded
		// dwell still guarantees shutdown.
		return nil
	case domain.PhaseShutDown:
		return fmt.Errorf("hard fault during shutdown: %w", cause)
	}

	if e.hooks.OnEscalation != nil {
		e.hooks.OnEscalation(ctx, &domain.PhaseEvent{
			Timestamp: e.clock(), Type: domain.EventEscalation, From: phase,
			To: domain.PhaseSafeMode, Reason: cause.Error(),
		})
	}
	// SafeMode entry cancels every background task, not just the
	// failing phase's.
	err := e.transition(ctx, domain.PhaseSafeMode, cause.Error())
	e.mctx.Tasks.CancelAll()
	return err
}

// runShutdown runs the terminal handler exactly once and returns.
func (e *Engine) runShutdown(ctx context.Context) error {
	e.mctx.Tasks.CancelAll()
	outcome := e.handlers[domain.PhaseShutDown].Tick(ctx, e.mctx)
	if outcome.Kind == domain.OutcomeFail {
		return fmt.Errorf("hard fault during shutdown: %w", outcome.Err)
	}
	e.logger.Info("mission complete")
	return nil
}

func (e *Engine) wait(ctx context.Context, backoff time.Duration) {
	if backoff <= 0 {
		backoff = e.mctx.Config.Flight.PollInterval
	}
	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (e *Engine) enterHooks(ctx context.Context, from, to domain.Phase, reason string) {
	if e.hooks.OnPhaseEnter != nil {
		e.hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{
			Timestamp: e.record.EnteredAt, Type: domain.EventPhaseEnter,
			From: from, To: to, Attempt: e.record.Attempts[to], Reason: reason,
		})
	}
}
