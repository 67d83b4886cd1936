package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// AcquiringFix polls the GPS until a valid fix arrives, bounded by the
// configured acquisition timeout. Transport errors count as "still
// waiting": a receiver that is warming up often drops a few frames.
type AcquiringFix struct {
	deadline time.Time
}

// NewAcquiringFix creates the AcquiringFix handler.
func NewAcquiringFix() *AcquiringFix { return &AcquiringFix{} }

func (h *AcquiringFix) Phase() domain.Phase { return domain.PhaseAcquiringFix }

func (h *AcquiringFix) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "acquiring_fix")

	if h.deadline.IsZero() {
		h.deadline = time.Now().Add(m.Config.Flight.FixTimeout)
		logger.Info("acquiring gps fix", "timeout", m.Config.Flight.FixTimeout)
	}
	if time.Now().After(h.deadline) {
		return domain.Fail(domain.TimeoutError(domain.PhaseAcquiringFix,
			fmt.Errorf("no gps fix within %s", m.Config.Flight.FixTimeout)))
	}

	fix, err := m.Hardware.GPS.ReadFix(ctx)
	switch {
	case err == nil:
		m.SetLastFix(fix)
		logger.Info("gps fix acquired", "lat", fix.Latitude, "lon", fix.Longitude, "alt", fix.Altitude, "sats", fix.Satellites)
		return domain.Continue(domain.PhaseFixAcquired)
	case errors.Is(err, ports.ErrNoFix):
		return domain.Stay(m.Config.Flight.PollInterval)
	default:
		logger.Warn("gps read error while acquiring", "error", err)
		return domain.Stay(m.Config.Flight.PollInterval)
	}
}
