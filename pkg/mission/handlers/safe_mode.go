package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
)

// SafeMode is the fault-absorption phase. Nothing here may escalate:
// every collaborator call is best-effort, errors are logged and
// swallowed, and the only hard guarantee is liveness: after the
// configured dwell the mission transitions to ShutDown even if every
// collaborator is permanently dead. That bound is what keeps the
// vehicle from staying powered indefinitely at altitude.
type SafeMode struct {
	enteredAt time.Time
	bo        backoff.BackOff
}

// NewSafeMode creates the SafeMode handler.
func NewSafeMode() *SafeMode { return &SafeMode{} }

func (h *SafeMode) Phase() domain.Phase { return domain.PhaseSafeMode }

func (h *SafeMode) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "safe_mode")

	if h.enteredAt.IsZero() {
		h.enteredAt = time.Now()
		h.bo = newBroadcastBackoff(m.Config.Flight.TelemetryInterval)
		logger.Warn("safe mode entered", "dwell", m.Config.Flight.SafeModeDwell)
	}

	if time.Since(h.enteredAt) >= m.Config.Flight.SafeModeDwell {
		logger.Warn("safe mode dwell exhausted, shutting down")
		return domain.Continue(domain.PhaseShutDown)
	}

	h.broadcast(ctx, m, logger)

	wait := h.bo.NextBackOff()
	if wait == backoff.Stop {
		wait = m.Config.Flight.SafeModeDwell / 10
	}
	return domain.Stay(wait)
}

// broadcast attempts a reduced-cadence position report over whatever
// collaborators still answer. Every error is absorbed here.
func (h *SafeMode) broadcast(ctx context.Context, m *mission.Context, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("collaborator panicked during safe mode broadcast", "panic", r)
		}
	}()

	frame := domain.TelemetryFrame{
		Timestamp: time.Now().UTC(),
		Phase:     domain.PhaseSafeMode,
		Message:   "safe mode",
	}
	if fix, ok := m.LastFix(); ok {
		frame.Fix = &fix
	} else if m.Hardware.GPS != nil {
		if fix, err := m.Hardware.GPS.ReadFix(ctx); err == nil {
			m.SetLastFix(fix)
			frame.Fix = &fix
		}
	}
	if m.Hardware.Battery != nil {
		if pc, err := m.Hardware.Battery.MainPercent(ctx); err == nil {
			frame.BatteryPc = pc
		}
	}

	if m.Hardware.Telemetry != nil {
		if err := m.Hardware.Telemetry.Send(ctx, frame); err != nil {
			logger.Warn("safe mode telemetry failed", "error", err)
		}
	}
	if m.Hardware.Modem != nil {
		if err := sendPositionSMS(ctx, m, logger, "safe mode"); err != nil {
			logger.Warn("safe mode sms failed", "error", err)
		}
	}
}

// newBroadcastBackoff spaces safe-mode broadcasts out from the normal
// telemetry cadence up to fifteen minutes, trading recovery-position
// freshness for battery.
func newBroadcastBackoff(base time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.MaxInterval = 15 * time.Minute
	bo.MaxElapsedTime = 0
	return bo
}
