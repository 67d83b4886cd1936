package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter EventType = "phase_enter"
	EventPhaseLeave EventType = "phase_leave"
	EventEscalation EventType = "escalation"
)

// PhaseEvent describes a committed transition edge.
type PhaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	From      Phase     `json:"from,omitempty"`
	To        Phase     `json:"to"`
	Attempt   int       `json:"attempt,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Hooks run
// after the transition is committed and must not block: metrics and the
// status server hang off these.
type LifecycleHooks struct {
	OnPhaseEnter func(context.Context, *PhaseEvent)
	OnPhaseLeave func(context.Context, *PhaseEvent)
	OnEscalation func(context.Context, *PhaseEvent)
}
