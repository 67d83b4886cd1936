// Package mission contains the state machine engine that drives the
// flight: it owns the phase record, enforces the transition graph,
// persists every committed transition before any side effect runs, and
// escalates handler failures into SafeMode. It also supervises the
// long-lived background tasks (capture cadence, telemetry heartbeat)
// that run alongside the phase handlers.
package mission
