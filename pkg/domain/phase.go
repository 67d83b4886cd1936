package domain

import "fmt"

// Phase identifies one discrete stage of the mission lifecycle.
// The string values are the canonical names written to the persisted
// state image, so they must stay stable across releases: a probe
// recovered in the field may carry an image written by older firmware.
type Phase string

const (
	// PhaseInit runs the hardware self-test after power-up.
	PhaseInit Phase = "INITIALIZING"
	// PhaseWaitingLaunch waits for battery thresholds and the launch trigger.
	PhaseWaitingLaunch Phase = "WAITING_LAUNCH"
	// PhaseAcquiringFix polls the GPS until a valid fix arrives.
	PhaseAcquiringFix Phase = "ACQUIRING_FIX"
	// PhaseFixAcquired reports the initial position and starts capture.
	PhaseFixAcquired Phase = "FIX_ACQUIRED"
	// PhaseGoingUp tracks ascent until apogee is detected.
	PhaseGoingUp Phase = "GOING_UP"
	// PhaseGoingDown tracks descent until landing is detected.
	PhaseGoingDown Phase = "GOING_DOWN"
	// PhaseLanded reports the final position and stops capture.
	PhaseLanded Phase = "LANDED"
	// PhaseSafeMode is the fault-absorption phase. It guarantees a bounded
	// time to shutdown even under total collaborator failure.
	PhaseSafeMode Phase = "SAFE_MODE"
	// PhaseShutDown releases all hardware and terminates. Unique sink.
	PhaseShutDown Phase = "SHUT_DOWN"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{
	PhaseInit,
	PhaseWaitingLaunch,
	PhaseAcquiringFix,
	PhaseFixAcquired,
	PhaseGoingUp,
	PhaseGoingDown,
	PhaseLanded,
	PhaseSafeMode,
	PhaseShutDown,
}

// ParsePhase converts a persisted phase name back into a Phase.
// Unknown names are an error, never silently mapped to a default:
// resuming the wrong phase at altitude is worse than refusing to resume.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	for _, known := range Phases {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Terminal reports whether the phase is the sink of the transition graph.
func (p Phase) Terminal() bool {
	return p == PhaseShutDown
}

func (p Phase) String() string {
	return string(p)
}
