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

// maxConsecutiveGPSErrors is how many transport errors in a row the
// ascent and descent trackers tolerate before escalating. At the
// default poll interval this is half a minute of dead receiver.
const maxConsecutiveGPSErrors = 30

// GoingUp tracks altitude until apogee: a sustained decrease across the
// configured number of consecutive samples.
type GoingUp struct {
	deadline   time.Time
	lastAlt    float64
	haveAlt    bool
	descending int
	gpsErrors  int
}

// NewGoingUp creates the GoingUp handler.
func NewGoingUp() *GoingUp { return &GoingUp{} }

func (h *GoingUp) Phase() domain.Phase { return domain.PhaseGoingUp }

func (h *GoingUp) Tick(ctx context.Context, m *mission.Context) domain.Outcome {
	logger := m.Logger.With("phase", "going_up")

	if h.deadline.IsZero() {
		// Twice the expected flight length: a balloon that has not
		// burst by then is not coming down on its own schedule, and
		// SafeMode's recovery broadcasts are more useful than waiting.
		h.deadline = time.Now().Add(2 * m.Config.Flight.Length)
	}
	if time.Now().After(h.deadline) {
		return domain.Fail(domain.TimeoutError(domain.PhaseGoingUp,
			fmt.Errorf("no apogee within %s", 2*m.Config.Flight.Length)))
	}

	fix, err := m.Hardware.GPS.ReadFix(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNoFix) {
			h.gpsErrors = 0
			return domain.Stay(m.Config.Flight.PollInterval)
		}
		h.gpsErrors++
		if h.gpsErrors >= maxConsecutiveGPSErrors {
			return domain.Fail(domain.HardwareError(domain.PhaseGoingUp,
				fmt.Errorf("gps unreadable for %d consecutive samples: %w", h.gpsErrors, err)))
		}
		return domain.Stay(m.Config.Flight.PollInterval)
	}
	h.gpsErrors = 0
	m.SetLastFix(fix)

	if h.haveAlt && fix.Altitude < h.lastAlt {
		h.descending++
	} else {
		h.descending = 0
	}
	h.lastAlt = fix.Altitude
	h.haveAlt = true

	if h.descending >= m.Config.Flight.ApogeeSamples {
		logger.Info("apogee detected", "alt", fix.Altitude, "samples", h.descending)
		return domain.Continue(domain.PhaseGoingDown)
	}
	return domain.Stay(m.Config.Flight.PollInterval)
}
