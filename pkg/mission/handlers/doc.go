// Package handlers implements the per-phase mission logic: one handler
// per phase of the flight, each deciding a single outcome per tick from
// the shared mission context and the hardware collaborators relevant to
// that phase. Handlers are stateful across ticks of the same phase but
// hold no authority over the phase record; only the engine transitions.
package handlers
