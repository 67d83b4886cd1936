package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// GoingDown tracks descent until landing: near-zero vertical speed
// combined with altitude below the configured threshold, sustained
// across consecutive samples.
type GoingDown struct {
	deadline  time.Time
	still     int
	gpsErrors int
}

// NewGoingDown creates the GoingDown handler.
func NewGoingDown() *GoingDown { return &GoingDown{} }

func (h *GoingDown) Phase() domain.Phase { return domain.PhaseGoingDown }

func (h *GoingDown) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "going_down")

	if h.deadline.IsZero() {
		h.deadline = time.Now().Add(2 * m.Config.Flight.Length)
	}
	if time.Now().After(h.deadline) {
		return domain.Fail(domain.TimeoutError(domain.PhaseGoingDown,
			fmt.Errorf("no landing within %s", 2*m.Config.Flight.Length)))
	}

	fix, err := m.Hardware.GPS.ReadFix(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNoFix) {
			h.gpsErrors = 0
			return domain.Stay(m.Config.Flight.PollInterval)
		}
		h.gpsErrors++
		if h.gpsErrors >= maxConsecutiveGPSErrors {
			return domain.Fail(domain.HardwareError(domain.PhaseGoingDown,
				fmt.Errorf("gps unreadable for %d consecutive samples: %w", h.gpsErrors, err)))
		}
		return domain.Stay(m.Config.Flight.PollInterval)
	}
	h.gpsErrors = 0
	m.SetLastFix(fix)

	still := math.Abs(fix.VerticalSpeed) <= m.Config.Flight.LandingMaxSpeed &&
		fix.Altitude <= m.Config.Flight.LandingAltitude
	if still {
		h.still++
	} else {
		h.still = 0
	}

	if h.still >= m.Config.Flight.LandingSamples {
		logger.Info("landing detected", "alt", fix.Altitude, "samples", h.still)
		return domain.Continue(domain.PhaseLanded)
	}
	return domain.Stay(m.Config.Flight.PollInterval)
}
