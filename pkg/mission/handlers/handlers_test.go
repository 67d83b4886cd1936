package handlers_test

import (
	"time"

	"github.com/nimbus-hab/nimbus/internal/adapters/mock"
	"github.com/nimbus-hab/nimbus/internal/config"
	"github.com/nimbus-hab/nimbus/pkg/mission"
)

// rig bundles a mission context with its mock collaborators.
type rig struct {
	cfg       *config.Config
	gps       *mock.GPS
	camera    *mock.Camera
	modem     *mock.Modem
	telemetry *mock.Telemetry
	battery   *mock.Battery
	power     *mock.Power
}

func newRig() *rig {
	cfg := config.Default()
	cfg.Flight.PollInterval = time.Millisecond
	cfg.Flight.ModuleCheckTimeout = 50 * time.Millisecond
	// Keep the disk requirement trivially satisfiable on any test host.
	cfg.Flight.Length = time.Second
	cfg.Video.BitrateKbps = 8

	return &rig{
		cfg:       cfg,
		gps:       mock.NewGPS(),
		camera:    mock.NewCamera(),
		modem:     mock.NewModem(),
		telemetry: mock.NewTelemetry(),
		battery:   mock.NewBattery(0.95, 0.9),
		power:     mock.NewPower(),
	}
}

func (r *rig) context() *mission.Context {
	return mission.NewContext(r.cfg, mission.Hardware{
		GPS:       r.gps,
		Camera:    r.camera,
		Modem:     r.modem,
		Telemetry: r.telemetry,
		Battery:   r.battery,
		Power:     r.power,
	}, nil)
}
