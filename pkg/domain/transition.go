package domain

// transitions is the static edge set of the mission graph. The graph is
// fixed and small: it is not user-extensible at runtime, and the engine
// treats any edge outside this table as a programming-invariant
// violation rather than a recoverable mission error.
var transitions = map[Phase][]Phase{
	PhaseInit:          {PhaseWaitingLaunch, PhaseSafeMode},
	PhaseWaitingLaunch: {PhaseAcquiringFix, PhaseSafeMode},
	PhaseAcquiringFix:  {PhaseFixAcquired, PhaseSafeMode},
	PhaseFixAcquired:   {PhaseGoingUp, PhaseSafeMode},
	PhaseGoingUp:       {PhaseGoingDown, PhaseSafeMode},
	PhaseGoingDown:     {PhaseLanded, PhaseSafeMode},
	PhaseLanded:        {PhaseShutDown},
	PhaseSafeMode:      {PhaseShutDown},
	PhaseShutDown:      nil,
}

// CanTransition reports whether the edge from → to is in the mission graph.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Successors returns the allowed next phases of from. The returned slice
// must not be modified.
func Successors(from Phase) []Phase {
	return transitions[from]
}

// ValidateGraph checks the structural invariants of the transition table:
// every non-terminal phase has at least one outgoing edge, every phase
// that can fail has an escalation edge to SafeMode, and ShutDown is the
// unique sink.
func ValidateGraph() error {
	for _, p := range Phases {
		next := transitions[p]
		if p.Terminal() {
			if len(next) != 0 {
				return ErrGraphInvalid
			}
			continue
		}
		if len(next) == 0 {
			return ErrGraphInvalid
		}
		if p != PhaseLanded && p != PhaseSafeMode && !CanTransition(p, PhaseSafeMode) {
			return ErrGraphInvalid
		}
	}
	return nil
}
