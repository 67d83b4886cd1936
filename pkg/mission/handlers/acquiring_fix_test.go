package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/internal/adapters/mock"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
)

func TestAcquiringFixSuccess(t *testing.T) {
	r := newRig()
	r.gps.Push(mock.NoFix(), mock.NoFix(), mock.FixAt(680))
	mctx := r.context()

	h := handlers.NewAcquiringFix()
	assert.Equal(t, domain.OutcomeStay, h.Tick(context.Background(), mctx).Kind)
	assert.Equal(t, domain.OutcomeStay, h.Tick(context.Background(), mctx).Kind)

	out := h.Tick(context.Background(), mctx)
	assert.Equal(t, domain.OutcomeContinue, out.Kind)
	assert.Equal(t, domain.PhaseFixAcquired, out.Next)

	fix, ok := mctx.LastFix()
	require.True(t, ok, "the acquired fix must be recorded")
	assert.Equal(t, 680.0, fix.Altitude)
}

func TestAcquiringFixTransportErrorsAreWaiting(t *testing.T) {
	r := newRig()
	r.gps.Push(mock.Reading{Err: errors.New("serial noise")})

	out := handlers.NewAcquiringFix().Tick(context.Background(), r.context())
	assert.Equal(t, domain.OutcomeStay, out.Kind)
}

func TestAcquiringFixTimeout(t *testing.T) {
	r := newRig()
	r.cfg.Flight.FixTimeout = -time.Second
	r.gps.Push(mock.NoFix())

	out := handlers.NewAcquiringFix().Tick(context.Background(), r.context())
	assert.Equal(t, domain.OutcomeFail, out.Kind)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(out.Err))
}
