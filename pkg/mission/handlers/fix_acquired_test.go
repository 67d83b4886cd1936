package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
)

func TestFixAcquiredReportsAndStartsCapture(t *testing.T) {
	r := newRig()
	mctx := r.context()
	mctx.SetLastFix(domain.Fix{Time: time.Now().UTC(), Latitude: 40.45, Longitude: -3.69, Altitude: 680})

	out := handlers.NewFixAcquired().Tick(context.Background(), mctx)
	defer mctx.Tasks.CancelAll()

	require.Equal(t, domain.OutcomeContinue, out.Kind)
	assert.Equal(t, domain.PhaseGoingUp, out.Next)

	msgs := r.modem.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "balloon launching")
	assert.Contains(t, msgs[0], "lat=40.45")

	assert.True(t, mctx.Tasks.Running(mission.ScopeCapture))
	assert.True(t, mctx.Tasks.Running(mission.ScopeTelemetry))
}

func TestFixAcquiredHeartbeat(t *testing.T) {
	r := newRig()
	r.cfg.Flight.TelemetryInterval = 5 * time.Millisecond
	mctx := r.context()

	out := handlers.NewFixAcquired().Tick(context.Background(), mctx)
	require.Equal(t, domain.OutcomeContinue, out.Kind)

	// Give the heartbeat a few intervals, then stop everything.
	time.Sleep(50 * time.Millisecond)
	mctx.Tasks.CancelAll()

	assert.NotEmpty(t, r.telemetry.Sent(), "heartbeat frames should be flowing")
}

func TestFixAcquiredSMSFailure(t *testing.T) {
	t.Run("optional modem failure is tolerated", func(t *testing.T) {
		r := newRig()
		r.modem.SendErr = errors.New("no carrier")
		mctx := r.context()

		out := handlers.NewFixAcquired().Tick(context.Background(), mctx)
		mctx.Tasks.CancelAll()
		assert.Equal(t, domain.OutcomeContinue, out.Kind)
	})

	t.Run("mandatory modem failure escalates", func(t *testing.T) {
		r := newRig()
		r.cfg.Modules.Mandatory = append(r.cfg.Modules.Mandatory, "modem")
		r.modem.SendErr = errors.New("no carrier")
		mctx := r.context()

		out := handlers.NewFixAcquired().Tick(context.Background(), mctx)
		mctx.Tasks.CancelAll()
		assert.Equal(t, domain.OutcomeFail, out.Kind)
	})
}
