package sim_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/internal/adapters/sim"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

func TestGPSSearchesBeforeFirstFix(t *testing.T) {
	p := sim.DefaultProfile()
	p.FixDelay = 50 * time.Millisecond
	gps := sim.NewGPS(p)

	_, err := gps.ReadFix(context.Background())
	assert.ErrorIs(t, err, ports.ErrNoFix)

	time.Sleep(p.FixDelay + 10*time.Millisecond)
	fix, err := gps.ReadFix(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, p.GroundAltitude, fix.Altitude, p.AscentRate, "still near the ground just after the first fix")
	assert.Positive(t, fix.Satellites)
}

func TestGPSClimbs(t *testing.T) {
	p := sim.DefaultProfile()
	p.FixDelay = 0
	p.AscentRate = 10000
	gps := sim.NewGPS(p)

	first, err := gps.ReadFix(context.Background())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	second, err := gps.ReadFix(context.Background())
	require.NoError(t, err)

	assert.Greater(t, second.Altitude, first.Altitude)
	assert.Positive(t, second.VerticalSpeed)
}

func TestGPSNeverDescendsBelowGround(t *testing.T) {
	p := sim.Profile{
		GroundAltitude: 650,
		BurstAltitude:  700,
		AscentRate:     1e6, // instant burst
		DescentRate:    1e6, // instant descent
	}
	gps := sim.NewGPS(p)

	_, err := gps.ReadFix(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	fix, err := gps.ReadFix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, p.GroundAltitude, fix.Altitude)
}
