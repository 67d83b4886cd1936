package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

func TestNewPhaseRecord(t *testing.T) {
	now := time.Now().UTC()
	r := domain.NewPhaseRecord(domain.PhaseInit, now)

	assert.Equal(t, domain.PhaseInit, r.Phase)
	assert.Equal(t, now, r.EnteredAt)
	assert.Equal(t, 1, r.Attempts[domain.PhaseInit])
}

func TestAdvance(t *testing.T) {
	t0 := time.Now().UTC()
	t1 := t0.Add(time.Minute)

	r := domain.NewPhaseRecord(domain.PhaseInit, t0)
	next := r.Advance(domain.PhaseWaitingLaunch, t1)

	t.Run("produces the committed record", func(t *testing.T) {
		assert.Equal(t, domain.PhaseWaitingLaunch, next.Phase)
		assert.Equal(t, t1, next.EnteredAt)
		assert.Equal(t, 1, next.Attempts[domain.PhaseInit])
		assert.Equal(t, 1, next.Attempts[domain.PhaseWaitingLaunch])
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		assert.Equal(t, domain.PhaseInit, r.Phase)
		assert.Equal(t, t0, r.EnteredAt)
		assert.Zero(t, r.Attempts[domain.PhaseWaitingLaunch])
	})

	t.Run("counts re-entries", func(t *testing.T) {
		again := next.Advance(domain.PhaseWaitingLaunch, t1.Add(time.Minute))
		assert.Equal(t, 2, again.Attempts[domain.PhaseWaitingLaunch])
	})
}

func TestClone(t *testing.T) {
	r := domain.NewPhaseRecord(domain.PhaseGoingUp, time.Now().UTC())
	c := r.Clone()
	require.Equal(t, r, c)

	c.Attempts[domain.PhaseGoingUp] = 99
	assert.Equal(t, 1, r.Attempts[domain.PhaseGoingUp], "clone must not share the attempts map")
}
