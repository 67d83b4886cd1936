package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

func TestShutDownReleasesHardware(t *testing.T) {
	r := newRig()
	r.cfg.PowerOffOnShutdown = true
	mctx := r.context()

	out := handlers.NewShutDown().Tick(context.Background(), mctx)

	assert.Equal(t, domain.OutcomeDone, out.Kind)

	frames := r.telemetry.Sent()
	require.Len(t, frames, 1)
	assert.Equal(t, "shutting down", frames[0].Message)

	for _, mod := range []ports.Module{ports.ModuleGPS, ports.ModuleCamera, ports.ModuleModem, ports.ModuleTelemetry} {
		on, tracked := r.power.Enabled[mod]
		assert.True(t, tracked, "rail %s never touched", mod)
		assert.False(t, on, "rail %s still powered", mod)
	}
}

func TestShutDownWithoutPowerOff(t *testing.T) {
	r := newRig()
	r.cfg.PowerOffOnShutdown = false
	mctx := r.context()

	out := handlers.NewShutDown().Tick(context.Background(), mctx)

	assert.Equal(t, domain.OutcomeDone, out.Kind)
	assert.Empty(t, r.power.Enabled, "rails must stay up when power-off is disabled")
}

func TestShutDownToleratesFailures(t *testing.T) {
	r := newRig()
	r.cfg.PowerOffOnShutdown = true
	r.telemetry.SendErr = assert.AnError
	r.power.FailWith = assert.AnError
	mctx := r.context()

	out := handlers.NewShutDown().Tick(context.Background(), mctx)
	assert.Equal(t, domain.OutcomeDone, out.Kind, "hardware release is best-effort")
}
