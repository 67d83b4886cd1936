/*
Package ports defines the driven ports (interfaces) for the mission core.

These interfaces decouple the engine and phase handlers from concrete
hardware and storage, so the whole flight logic can run against mocks
on a desk or simulated hardware on a bench rig.

# Key Interfaces

  - StateStore: persists the phase record across restarts.
  - GPS, Camera, Modem, Telemetry, BatteryMonitor, PowerControl: the
    hardware collaborators consumed by phase handlers.
  - DistributedLocker: bench-rig coordination for a shared state store.
*/
package ports
