package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// All returns the full handler set for the mission, in lifecycle order.
func All() []mission.Handler {
	return []mission.Handler{
		NewInit(),
		NewWaitingLaunch(),
		NewAcquiringFix(),
		NewFixAcquired(),
		NewGoingUp(),
		NewGoingDown(),
		NewLanded(),
		NewSafeMode(),
		NewShutDown(),
	}
}

// healthCheckers maps the enabled modules of the airframe to their
// self-test capability. Collaborators that do not implement
// ports.HealthChecker are assumed healthy if constructed.
func healthCheckers(m *mission.Context) map[ports.Module]ports.HealthChecker {
	out := make(map[ports.Module]ports.HealthChecker)
	candidates := map[ports.Module]any{
		ports.ModuleGPS:       m.Hardware.GPS,
		ports.ModuleCamera:    m.Hardware.Camera,
		ports.ModuleModem:     m.Hardware.Modem,
		ports.ModuleTelemetry: m.Hardware.Telemetry,
	}
	for mod, hw := range candidates {
		if !m.Config.ModuleEnabled(mod) || hw == nil {
			continue
		}
		if hc, ok := hw.(ports.HealthChecker); ok {
			out[mod] = hc
		}
	}
	return out
}

// sendPositionSMS formats and sends a position report. Best-effort:
// the caller decides whether a failure matters.
func sendPositionSMS(ctx context.Context, m *mission.Context, logger *slog.Logger, prefix string) error {
	if m.Hardware.Modem == nil || !m.Config.ModuleEnabled(ports.ModuleModem) {
		return nil
	}
	msg := prefix
	if fix, ok := m.LastFix(); ok {
		msg = formatPositionMessage(prefix, fix)
	}
	if err := m.Hardware.Modem.SendSMS(ctx, msg); err != nil {
		logger.Warn("sms send failed", "error", err)
		return err
	}
	return nil
}

func formatPositionMessage(prefix string, fix domain.Fix) string {
	return fmt.Sprintf("%s %s lat=%.6f lon=%.6f alt=%.1fm",
		prefix, fix.Time.UTC().Format(time.RFC3339),
		fix.Latitude, fix.Longitude, fix.Altitude)
}
