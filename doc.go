/*
Package nimbus is the flight controller for an autonomous stratospheric
balloon probe. It drives a mission through a fixed phase graph
(initialization, launch wait, fix acquisition, ascent, descent, landing)
with crash-resilient persistence: every phase transition is committed to
stable storage before any side effect of the new phase runs, so a
mid-flight reboot resumes exactly where the probe was.

# Architecture

The core follows a ports-and-adapters layout. pkg/domain holds the phase
enumeration, the transition graph and the persisted phase record;
pkg/mission holds the engine and per-phase handlers; pkg/ports defines
the hardware and storage interfaces; internal/adapters provides the
flight file store, the bench-rig Redis store, simulated hardware and the
ground status server.

Failures never crash the mission: any handler fault escalates into
SafeMode, which broadcasts position over every channel it still has for
a bounded dwell before forcing shutdown.

# Usage

	cfg := config.Default()
	m, err := nimbus.New(cfg, nimbus.WithSimulatedHardware())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := m.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package nimbus
