package domain

import "time"

// OutcomeKind tells the engine what to do after a handler tick.
type OutcomeKind int

const (
	// OutcomeContinue requests a transition to Outcome.Next.
	OutcomeContinue OutcomeKind = iota
	// OutcomeStay re-invokes the same handler on the next tick, after
	// the handler-specified backoff. No persistence write happens.
	OutcomeStay
	// OutcomeFail escalates to SafeMode (or aborts, if already there).
	OutcomeFail
	// OutcomeDone is returned only by the terminal phase handler, once
	// teardown has finished.
	OutcomeDone
)

// Outcome is the result of one handler tick. Handlers pick exactly one
// outgoing edge per tick; the engine never chooses nondeterministically.
type Outcome struct {
	Kind OutcomeKind

	// Next is the requested phase for OutcomeContinue.
	Next Phase

	// Backoff is how long the engine should wait before the next tick
	// of the same handler, for OutcomeStay. Zero means re-tick at the
	// engine's default cadence.
	Backoff time.Duration

	// Err carries the failure for OutcomeFail.
	Err error
}

// Continue builds an outcome requesting a transition to next.
func Continue(next Phase) Outcome {
	return Outcome{Kind: OutcomeContinue, Next: next}
}

// Stay builds an outcome that re-ticks the current handler after backoff.
func Stay(backoff time.Duration) Outcome {
	return Outcome{Kind: OutcomeStay, Backoff: backoff}
}

// Fail builds an outcome escalating err.
func Fail(err error) Outcome {
	return Outcome{Kind: OutcomeFail, Err: err}
}

// Done builds the terminal outcome.
func Done() Outcome {
	return Outcome{Kind: OutcomeDone}
}

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeStay:
		return "stay"
	case OutcomeFail:
		return "fail"
	case OutcomeDone:
		return "done"
	}
	return "unknown"
}
