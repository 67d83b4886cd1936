package handlers

import (
	"context"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
)

// ShutDown releases all hardware and terminates the mission. It runs
// exactly once and is always the last phase; the engine has already
// cancelled every background task and durably recorded the phase before
// this handler ticks. Hardware release is best-effort: a rail that
// refuses to power off must not keep the controller alive.
type ShutDown struct{}

// NewShutDown creates the ShutDown handler.
func NewShutDown() *ShutDown { return &ShutDown{} }

func (h *ShutDown) Phase() domain.Phase { return domain.PhaseShutDown }

func (h *ShutDown) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "shut_down")

	if m.Hardware.Camera != nil {
		if _, err := m.Hardware.Camera.StopVideo(ctx); err != nil {
			logger.Warn("stopping video during shutdown failed", "error", err)
		}
	}

	if m.Hardware.Telemetry != nil {
		frame := domain.TelemetryFrame{
			Timestamp: time.Now().UTC(),
			Phase:     domain.PhaseShutDown,
			Message:   "shutting down",
		}
		if err := m.Hardware.Telemetry.Send(ctx, frame); err != nil {
			logger.Warn("shutdown telemetry frame failed", "error", err)
		}
	}

	if m.Config.PowerOffOnShutdown && m.Hardware.Power != nil {
		for _, mod := range m.Config.Modules.Enabled {
			if err := m.Hardware.Power.Disable(ctx, mod); err != nil {
				logger.Warn("powering off module failed", "module", mod, "error", err)
			}
		}
	}

	logger.Info("hardware released, terminating")
	return domain.Done()
}
