package nimbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus"
	"github.com/nimbus-hab/nimbus/internal/adapters/mock"
	"github.com/nimbus-hab/nimbus/internal/config"
	"github.com/nimbus-hab/nimbus/internal/logging"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
)

func flightConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Flight.PollInterval = time.Millisecond
	cfg.Flight.ModuleCheckTimeout = 50 * time.Millisecond
	cfg.Flight.ApogeeSamples = 2
	cfg.Flight.LandingSamples = 2
	// Keep the disk requirement trivially satisfiable on any test host.
	cfg.Flight.Length = time.Second
	cfg.Video.BitrateKbps = 8
	return cfg
}

// flightScript replays a whole nominal flight through the mock GPS.
func flightScript(gps *mock.GPS) {
	// Pad: no fix yet, then the first fix.
	gps.Push(mock.NoFix(), mock.NoFix(), mock.FixAt(650))
	// Ascent.
	for _, alt := range []float64{1200, 5000, 12000, 24000, 31000} {
		gps.Push(mock.FixAt(alt))
	}
	// Burst and descent.
	for _, alt := range []float64{30500, 30000, 18000, 7000} {
		gps.Push(mock.FixAt(alt))
	}
	// On the ground: low and still. The last reading repeats forever.
	ground := mock.FixAt(720)
	gps.Push(ground, ground, ground)
}

func TestFullMissionOnMockHardware(t *testing.T) {
	gps := mock.NewGPS()
	flightScript(gps)
	modem := mock.NewModem()
	telemetry := mock.NewTelemetry()
	store := mock.NewStore()

	m, err := nimbus.New(flightConfig(t),
		nimbus.WithHardware(mission.Hardware{
			GPS:       gps,
			Camera:    mock.NewCamera(),
			Modem:     modem,
			Telemetry: telemetry,
			Battery:   mock.NewBattery(0.95, 0.9),
			Power:     mock.NewPower(),
		}),
		nimbus.WithStore(store),
		nimbus.WithLogger(logging.NewNop()),
	)
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	record := m.Record()
	require.NotNil(t, record)
	assert.Equal(t, domain.PhaseShutDown, record.Phase)
	assert.Zero(t, record.Attempts[domain.PhaseSafeMode], "a nominal flight never enters safe mode")

	// Both position reports went out.
	msgs := modem.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "balloon launching")
	assert.Contains(t, msgs[1], "balloon landed")

	// Every mainline phase was committed exactly once.
	final := store.Current()
	require.NotNil(t, final)
	for _, p := range domain.Phases {
		if p == domain.PhaseSafeMode {
			continue
		}
		assert.Equal(t, 1, final.Attempts[p], "phase %s", p)
	}
}

func TestMissionResumesAfterReboot(t *testing.T) {
	store := mock.NewStore()
	store.Seed(domain.NewPhaseRecord(domain.PhaseGoingDown, time.Now().UTC().Add(-time.Hour)))

	gps := mock.NewGPS()
	ground := mock.FixAt(700)
	gps.Push(ground, ground, ground)

	m, err := nimbus.New(flightConfig(t),
		nimbus.WithHardware(mission.Hardware{
			GPS:       gps,
			Telemetry: mock.NewTelemetry(),
		}),
		nimbus.WithStore(store),
		nimbus.WithLogger(logging.NewNop()),
	)
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	record := m.Record()
	require.NotNil(t, record)
	assert.Equal(t, domain.PhaseShutDown, record.Phase)
	assert.Equal(t, 2, record.Attempts[domain.PhaseGoingDown], "the reboot re-entered the persisted phase")
	assert.Zero(t, record.Attempts[domain.PhaseInit], "earlier phases must not re-run on resume")
}

func TestNewRequiresHardware(t *testing.T) {
	_, err := nimbus.New(flightConfig(t), nimbus.WithStore(mock.NewStore()), nimbus.WithLogger(logging.NewNop()))
	assert.ErrorContains(t, err, "no hardware wired")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := flightConfig(t)
	cfg.Video.FPS = 500
	_, err := nimbus.New(cfg, nimbus.WithSimulatedHardware())
	assert.Error(t, err)
}
