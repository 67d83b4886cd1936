package handlers

import (
	"context"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// FixAcquired reports the initial position over SMS and telemetry and
// starts the capture cadence and the downlink heartbeat. Both run as
// background tasks supervised by the engine: the cadence itself belongs
// to the whole flight, not to this phase.
type FixAcquired struct{}

// NewFixAcquired creates the FixAcquired handler.
func NewFixAcquired() *FixAcquired { return &FixAcquired{} }

func (h *FixAcquired) Phase() domain.Phase { return domain.PhaseFixAcquired }

func (h *FixAcquired) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "fix_acquired")

	if err := sendPositionSMS(ctx, m, logger, "balloon launching"); err != nil &&
		m.Config.ModuleMandatory(ports.ModuleModem) {
		return domain.Fail(domain.HardwareError(domain.PhaseFixAcquired, err))
	}

	if m.Config.ModuleEnabled(ports.ModuleCamera) && m.Hardware.Camera != nil {
		startCaptureCadence(ctx, m)
	}
	if m.Config.ModuleEnabled(ports.ModuleTelemetry) && m.Hardware.Telemetry != nil {
		startHeartbeat(ctx, m)
	}

	return domain.Continue(domain.PhaseGoingUp)
}

// startCaptureCadence launches the still-picture and video-segment
// tasks. They stop when Landed (or SafeMode entry) cancels the capture
// scope.
func startCaptureCadence(ctx context.Context, m *mission.Context) {
	cam := m.Hardware.Camera
	picInterval := m.Config.Picture.Interval
	firstDelay := m.Config.Picture.FirstDelay
	segment := m.Config.Video.SegmentLength
	logger := m.Logger.With("component", "capture")

	m.Tasks.Start(ctx, mission.ScopeCapture, "pictures", func(ctx context.Context) error {
		if !sleepCtx(ctx, firstDelay) {
			return nil
		}
		ticker := time.NewTicker(picInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := cam.TakePicture(ctx); err != nil {
					logger.Warn("picture capture failed", "error", err)
					continue
				}
				m.AddPicture()
			}
		}
	})

	m.Tasks.Start(ctx, mission.ScopeCapture, "video", func(ctx context.Context) error {
		for {
			if err := cam.StartVideo(ctx, segment); err != nil {
				logger.Warn("video segment start failed", "error", err)
				if !sleepCtx(ctx, time.Minute) {
					return nil
				}
				continue
			}
			if !sleepCtx(ctx, segment) {
				_, _ = cam.StopVideo(context.WithoutCancel(ctx))
				return nil
			}
			m.AddVideo()
		}
	})
}

// startHeartbeat launches the reduced-rate downlink frame stream.
func startHeartbeat(ctx context.Context, m *mission.Context) {
	tel := m.Hardware.Telemetry
	interval := m.Config.Flight.TelemetryInterval
	logger := m.Logger.With("component", "telemetry")

	m.Tasks.Start(ctx, mission.ScopeTelemetry, "heartbeat", func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				frame := domain.TelemetryFrame{Timestamp: time.Now().UTC(), Message: "heartbeat"}
				if fix, ok := m.LastFix(); ok {
					frame.Fix = &fix
				}
				if err := tel.Send(ctx, frame); err != nil {
					logger.Warn("heartbeat send failed", "error", err)
				}
			}
		}
	})
}

// sleepCtx waits for d, reporting false if the context was canceled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
