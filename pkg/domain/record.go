package domain

import "time"

// PhaseRecord is the authoritative snapshot of where the mission is.
// It is exclusively owned by the engine: handlers receive a copy and
// the engine mutates it only when a transition has been committed to
// stable storage.
type PhaseRecord struct {
	// Phase is the currently active phase.
	Phase Phase `json:"phase"`

	// EnteredAt is when the phase was entered (commit time of the
	// transition, not handler start time).
	EnteredAt time.Time `json:"entered_at"`

	// Attempts counts how many times each phase has been entered.
	// A resumed mission that keeps bouncing back into the same phase
	// shows up here, which SafeMode uses when deciding how much it
	// should still try before shutting down.
	Attempts map[Phase]int `json:"attempts,omitempty"`
}

// NewPhaseRecord creates a record starting at the given phase.
func NewPhaseRecord(phase Phase, now time.Time) *PhaseRecord {
	return &PhaseRecord{
		Phase:     phase,
		EnteredAt: now,
		Attempts:  map[Phase]int{phase: 1},
	}
}

// Advance returns the record that would result from committing a
// transition to next at the given time. The receiver is not modified;
// the engine swaps records only after the durable write succeeds.
func (r *PhaseRecord) Advance(next Phase, now time.Time) *PhaseRecord {
	attempts := make(map[Phase]int, len(r.Attempts)+1)
	for p, n := range r.Attempts {
		attempts[p] = n
	}
	attempts[next]++
	return &PhaseRecord{
		Phase:     next,
		EnteredAt: now,
		Attempts:  attempts,
	}
}

// Clone returns a deep copy of the record for handing out to readers.
func (r *PhaseRecord) Clone() *PhaseRecord {
	attempts := make(map[Phase]int, len(r.Attempts))
	for p, n := range r.Attempts {
		attempts[p] = n
	}
	return &PhaseRecord{
		Phase:     r.Phase,
		EnteredAt: r.EnteredAt,
		Attempts:  attempts,
	}
}
