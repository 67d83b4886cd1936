package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
)

func TestInitHappyPath(t *testing.T) {
	r := newRig()
	r.cfg.DataDir = t.TempDir()

	out := handlers.NewInit().Tick(context.Background(), r.context())

	assert.Equal(t, domain.OutcomeContinue, out.Kind)
	assert.Equal(t, domain.PhaseWaitingLaunch, out.Next)
}

func TestInitMandatoryModuleFailure(t *testing.T) {
	r := newRig()
	r.cfg.DataDir = t.TempDir()
	r.gps.CheckErr = errors.New("no nmea frames")

	out := handlers.NewInit().Tick(context.Background(), r.context())

	assert.Equal(t, domain.OutcomeFail, out.Kind)
	assert.Equal(t, domain.KindHardware, domain.KindOf(out.Err))
	assert.ErrorContains(t, out.Err, "mandatory module gps")
}

func TestInitOptionalModuleFailureIsTolerated(t *testing.T) {
	r := newRig()
	r.cfg.DataDir = t.TempDir()
	r.camera.CheckErr = errors.New("sensor init failed")

	out := handlers.NewInit().Tick(context.Background(), r.context())

	assert.Equal(t, domain.OutcomeContinue, out.Kind, "optional camera failure must not ground the flight")
}

func TestInitGSMConnectivity(t *testing.T) {
	t.Run("optional modem without network flies anyway", func(t *testing.T) {
		r := newRig()
		r.cfg.DataDir = t.TempDir()
		r.modem.Connectivity = false

		out := handlers.NewInit().Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeContinue, out.Kind)
	})

	t.Run("mandatory modem without network fails", func(t *testing.T) {
		r := newRig()
		r.cfg.DataDir = t.TempDir()
		r.cfg.Modules.Mandatory = append(r.cfg.Modules.Mandatory, "modem")
		r.modem.Connectivity = false

		out := handlers.NewInit().Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeFail, out.Kind)
	})
}

func TestInitBatteryThresholds(t *testing.T) {
	t.Run("below launch minimum fails", func(t *testing.T) {
		r := newRig()
		r.cfg.DataDir = t.TempDir()
		r.battery.Main = 0.5

		out := handlers.NewInit().Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeFail, out.Kind)
		assert.ErrorContains(t, out.Err, "not enough battery")
	})

	t.Run("disconnected main battery is tolerated", func(t *testing.T) {
		r := newRig()
		r.cfg.DataDir = t.TempDir()
		r.battery.Main = -1

		out := handlers.NewInit().Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeContinue, out.Kind)
	})

	t.Run("unreadable battery fails", func(t *testing.T) {
		r := newRig()
		r.cfg.DataDir = t.TempDir()
		r.battery.ModemErr = errors.New("adc read failed")

		out := handlers.NewInit().Tick(context.Background(), r.context())
		assert.Equal(t, domain.OutcomeFail, out.Kind)
	})
}

func TestInitDiskSpace(t *testing.T) {
	r := newRig()
	r.cfg.DataDir = t.TempDir()
	// An absurd recording budget no test host can satisfy.
	r.cfg.Flight.Length = 10000 * time.Hour
	r.cfg.Video.BitrateKbps = 20000000

	out := handlers.NewInit().Tick(context.Background(), r.context())

	assert.Equal(t, domain.OutcomeFail, out.Kind)
	assert.ErrorContains(t, out.Err, "not enough disk space")
}
