package handlers

import (
	"context"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Landed emits the final position report for recovery and stops the
// capture cadence. The report is the one thing the recovery team needs,
// so the SMS here is retried by SafeMode if this phase fails; the
// capture teardown is best-effort.
type Landed struct{}

// NewLanded creates the Landed handler.
func NewLanded() *Landed { return &Landed{} }

func (h *Landed) Phase() domain.Phase { return domain.PhaseLanded }

func (h *Landed) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "landed")

	m.Tasks.CancelScope(mission.ScopeCapture)
	if m.Hardware.Camera != nil && m.Config.ModuleEnabled(ports.ModuleCamera) {
		if _, err := m.Hardware.Camera.StopVideo(ctx); err != nil {
			logger.Warn("stopping video failed", "error", err)
		}
	}

	_ = sendPositionSMS(ctx, m, logger, "balloon landed")

	if m.Hardware.Telemetry != nil && m.Config.ModuleEnabled(ports.ModuleTelemetry) {
		frame := domain.TelemetryFrame{Phase: domain.PhaseLanded, Message: "landed"}
		if fix, ok := m.LastFix(); ok {
			frame.Fix = &fix
			frame.Timestamp = fix.Time
		}
		if err := m.Hardware.Telemetry.Send(ctx, frame); err != nil {
			logger.Warn("final telemetry frame failed", "error", err)
		}
	}

	pics, vids := m.Counters()
	logger.Info("flight complete", "pictures", pics, "videos", vids)
	return domain.Continue(domain.PhaseShutDown)
}
