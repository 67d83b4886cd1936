package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/internal/adapters/mock"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
)

func stillFix(alt, vspeed float64) mock.Reading {
	r := mock.FixAt(alt)
	r.Fix.VerticalSpeed = vspeed
	return r
}

func TestGoingDownDetectsLanding(t *testing.T) {
	r := newRig()
	r.cfg.Flight.LandingSamples = 2
	r.cfg.Flight.LandingAltitude = 3000
	r.cfg.Flight.LandingMaxSpeed = 1.0

	r.gps.Push(
		stillFix(20000, -15),
		stillFix(8000, -12),
		// Below the altitude gate but still moving: not landed.
		stillFix(2500, -6),
		// Still and low, twice in a row.
		stillFix(700, 0.2),
		stillFix(700, -0.1),
	)
	mctx := r.context()

	h := handlers.NewGoingDown()
	var out domain.Outcome
	for i := 0; i < 5; i++ {
		out = h.Tick(context.Background(), mctx)
		if out.Kind != domain.OutcomeStay {
			break
		}
	}

	require.Equal(t, domain.OutcomeContinue, out.Kind)
	assert.Equal(t, domain.PhaseLanded, out.Next)
}

func TestGoingDownStillButHighIsNotLanded(t *testing.T) {
	// A balloon floating at altitude is still, but not recoverable.
	r := newRig()
	r.cfg.Flight.LandingSamples = 2
	r.gps.Push(stillFix(12000, 0.1))

	h := handlers.NewGoingDown()
	for i := 0; i < 5; i++ {
		out := h.Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeStay, out.Kind)
	}
}
