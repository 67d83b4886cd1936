package mission

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// Task scopes. Phase-scoped tasks are cancelled by the engine when
// their phase is left; named scopes live until a handler cancels them
// (or SafeMode entry cancels everything).
const (
	// ScopeCapture owns the picture/video cadence, started at
	// FixAcquired and stopped at Landed.
	ScopeCapture = "capture"
	// ScopeTelemetry owns the downlink heartbeat.
	ScopeTelemetry = "telemetry"
)

// PhaseScope returns the task scope owned by a phase.
func PhaseScope(p domain.Phase) string {
	return "phase/" + string(p)
}

// TaskResult is reported by a background task when it stops on its own.
type TaskResult struct {
	Scope string
	Name  string
	Err   error
}

// TaskFunc is a long-lived background activity. It must return promptly
// when its context is canceled; a canceled context is a normal stop,
// not a failure.
type TaskFunc func(ctx context.Context) error

type scopeTasks struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// TaskGroup supervises background tasks. Tasks may read the mission
// context concurrently but never mutate the phase record; they report
// completion or failure through a result channel the engine drains on
// the next tick of the owning handler.
type TaskGroup struct {
	logger  *slog.Logger
	results chan TaskResult

	mu     sync.Mutex
	scopes map[string]*scopeTasks
}

// NewTaskGroup creates an empty supervisor.
func NewTaskGroup(logger *slog.Logger) *TaskGroup {
	return &TaskGroup{
		logger:  logger,
		results: make(chan TaskResult, 16),
		scopes:  make(map[string]*scopeTasks),
	}
}

// Start launches fn as a background task in the given scope.
func (g *TaskGroup) Start(ctx context.Context, scope, name string, fn TaskFunc) {
	g.mu.Lock()
	st, ok := g.scopes[scope]
	if !ok {
		taskCtx, cancel := context.WithCancel(ctx)
		group, groupCtx := errgroup.WithContext(taskCtx)
		// groupCtx propagates the first task failure to siblings in
		// the same scope.
		st = &scopeTasks{ctx: groupCtx, cancel: cancel, group: group}
		g.scopes[scope] = st
	}
	taskCtx := st.ctx
	g.mu.Unlock()

	g.logger.Debug("starting background task", "scope", scope, "task", name)
	st.group.Go(func() error {
		err := fn(taskCtx)
		if err != nil && taskCtx.Err() == nil {
			select {
			case g.results <- TaskResult{Scope: scope, Name: name, Err: err}:
			default:
				g.logger.Warn("task result channel full, dropping", "scope", scope, "task", name, "error", err)
			}
		}
		return err
	})
}

// Running reports whether the scope has live tasks.
func (g *TaskGroup) Running(scope string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.scopes[scope]
	return ok
}

// CancelScope stops every task in scope and waits for them to return.
// The engine calls this for the left phase's scope after the new phase
// has been persisted: the durable write happens strictly before the old
// phase's resources are released.
func (g *TaskGroup) CancelScope(scope string) {
	g.mu.Lock()
	st, ok := g.scopes[scope]
	if ok {
		delete(g.scopes, scope)
	}
	g.mu.Unlock()
	if !ok {
		return
	}

	st.cancel()
	if err := st.group.Wait(); err != nil && !isCanceled(err) {
		g.logger.Warn("background task ended with error during scope cancel", "scope", scope, "error", err)
	}
}

// CancelAll stops every task of every scope. Used on SafeMode entry and
// final shutdown.
func (g *TaskGroup) CancelAll() {
	g.mu.Lock()
	scopes := make([]string, 0, len(g.scopes))
	for s := range g.scopes {
		scopes = append(scopes, s)
	}
	g.mu.Unlock()
	for _, s := range scopes {
		g.CancelScope(s)
	}
}

// Drain returns any task results reported since the last drain, without
// blocking.
func (g *TaskGroup) Drain() []TaskResult {
	var out []TaskResult
	for {
		select {
		case r := <-g.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

func isCanceled(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
