package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
)

func TestWaitingLaunchGateOpens(t *testing.T) {
	r := newRig()

	out := handlers.NewWaitingLaunch().Tick(context.Background(), r.context())

	assert.Equal(t, domain.OutcomeContinue, out.Kind)
	assert.Equal(t, domain.PhaseAcquiringFix, out.Next)
}

func TestWaitingLaunchHoldsBelowThreshold(t *testing.T) {
	r := newRig()
	r.battery.Modem = 0.3

	h := handlers.NewWaitingLaunch()
	for i := 0; i < 3; i++ {
		out := h.Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeStay, out.Kind)
	}

	// Charge recovers; the gate opens.
	r.battery.Modem = 0.95
	out := h.Tick(context.Background(), r.context())
	assert.Equal(t, domain.OutcomeContinue, out.Kind)
}

func TestWaitingLaunchDisconnectedMainIsTolerated(t *testing.T) {
	r := newRig()
	r.battery.Main = -1

	out := handlers.NewWaitingLaunch().Tick(context.Background(), r.context())
	assert.Equal(t, domain.OutcomeContinue, out.Kind)
}

func TestWaitingLaunchWithoutMonitor(t *testing.T) {
	r := newRig()
	mctx := mission.NewContext(r.cfg, mission.Hardware{GPS: r.gps}, nil)

	out := handlers.NewWaitingLaunch().Tick(context.Background(), mctx)
	assert.Equal(t, domain.OutcomeContinue, out.Kind)
}

func TestWaitingLaunchReadErrorFails(t *testing.T) {
	r := newRig()
	r.battery.MainErr = errors.New("adc gone")

	out := handlers.NewWaitingLaunch().Tick(context.Background(), r.context())
	assert.Equal(t, domain.OutcomeFail, out.Kind)
	assert.Equal(t, domain.KindHardware, domain.KindOf(out.Err))
}
