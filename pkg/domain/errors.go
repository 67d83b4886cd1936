package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownPhase is returned when a persisted phase name is not in the
// phase enumeration.
var ErrUnknownPhase = errors.New("unknown phase")

// ErrGraphInvalid is returned by ValidateGraph when the transition table
// violates a structural invariant.
var ErrGraphInvalid = errors.New("transition graph invalid")

// ErrNoImage is returned by a state store when no persisted image exists.
// The engine treats this as a fresh boot and starts at Init.
var ErrNoImage = errors.New("no persisted state image")

// ErrCorruptImage is returned by a state store when an image exists but
// cannot be parsed. The engine must not guess: it resumes at SafeMode.
var ErrCorruptImage = errors.New("persisted state image corrupt")

// ErrorKind classifies mission errors for escalation decisions.
type ErrorKind string

const (
	// KindHardware is a collaborator I/O failure.
	KindHardware ErrorKind = "hardware"
	// KindTimeout means an awaited mission condition was never satisfied
	// within its bound.
	KindTimeout ErrorKind = "timeout"
	// KindPersistence means the state image could not be read or written.
	KindPersistence ErrorKind = "persistence"
	// KindConfig is a boot-time configuration error. It is fatal and
	// precedes the state machine.
	KindConfig ErrorKind = "config"
)

// MissionError is an error record consumed by the transition logic.
// It is logged but never persisted beyond the log.
type MissionError struct {
	Kind  ErrorKind
	Phase Phase
	Err   error
}

func (e *MissionError) Error() string {
	return fmt.Sprintf("%s error in phase %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *MissionError) Unwrap() error {
	return e.Err
}

// HardwareError wraps a collaborator failure originating in phase.
func HardwareError(phase Phase, err error) *MissionError {
	return &MissionError{Kind: KindHardware, Phase: phase, Err: err}
}

// TimeoutError wraps an exceeded mission bound originating in phase.
func TimeoutError(phase Phase, err error) *MissionError {
	return &MissionError{Kind: KindTimeout, Phase: phase, Err: err}
}

// PersistenceError wraps a state store failure originating in phase.
func PersistenceError(phase Phase, err error) *MissionError {
	return &MissionError{Kind: KindPersistence, Phase: phase, Err: err}
}

// KindOf extracts the error kind, defaulting to hardware for plain errors:
// an unclassified failure in flight is assumed to come from a collaborator.
func KindOf(err error) ErrorKind {
	var me *MissionError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindHardware
}
