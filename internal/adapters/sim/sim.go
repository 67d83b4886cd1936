// Package sim provides simulated hardware for desk runs: a full
// mission can be flown with `nimbus run --sim` in a couple of minutes,
// exercising the real engine and handlers against a synthetic flight
// profile.
package sim

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Profile shapes the synthetic flight.
type Profile struct {
	// GroundAltitude in meters.
	GroundAltitude float64
	// BurstAltitude is the simulated apogee.
	BurstAltitude float64
	// AscentRate and DescentRate in meters per second of wall time.
	AscentRate  float64
	DescentRate float64
	// FixDelay is how long the receiver "searches" before the first fix.
	FixDelay time.Duration
}

// DefaultProfile is a fast flight: up in a minute, down in half of one.
func DefaultProfile() Profile {
	return Profile{
		GroundAltitude: 650,
		BurstAltitude:  32000,
		AscentRate:     500,
		DescentRate:    900,
		FixDelay:       3 * time.Second,
	}
}

// GPS synthesizes fixes from the profile and the wall clock.
type GPS struct {
	profile Profile

	mu      sync.Mutex
	started time.Time
	lastAlt float64
	lastAt  time.Time
}

// NewGPS creates a simulated receiver. The flight clock starts at the
// first read.
func NewGPS(p Profile) *GPS {
	return &GPS{profile: p}
}

func (g *GPS) ReadFix(ctx context.Context) (domain.Fix, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if g.started.IsZero() {
		g.started = now
	}
	elapsed := now.Sub(g.started)
	if elapsed < g.profile.FixDelay {
		return domain.Fix{}, ports.ErrNoFix
	}

	alt := g.altitudeAt(elapsed - g.profile.FixDelay)
	var vs float64
	if !g.lastAt.IsZero() {
		dt := now.Sub(g.lastAt).Seconds()
		if dt > 0 {
			vs = (alt - g.lastAlt) / dt
		}
	}
	g.lastAlt, g.lastAt = alt, now

	return domain.Fix{
		Time:          now.UTC(),
		Latitude:      40.452 + elapsed.Seconds()*1e-5,
		Longitude:     -3.688 + elapsed.Seconds()*2e-5,
		Altitude:      alt,
		Satellites:    9,
		VerticalSpeed: vs,
	}, nil
}

func (g *GPS) altitudeAt(flight time.Duration) float64 {
	up := (g.profile.BurstAltitude - g.profile.GroundAltitude) / g.profile.AscentRate
	s := flight.Seconds()
	if s <= up {
		return g.profile.GroundAltitude + s*g.profile.AscentRate
	}
	down := g.profile.BurstAltitude - (s-up)*g.profile.DescentRate
	return math.Max(down, g.profile.GroundAltitude)
}

func (g *GPS) Check(ctx context.Context) error { return nil }

// Camera logs captures instead of driving sensor hardware.
type Camera struct {
	logger *slog.Logger

	mu        sync.Mutex
	recording bool
}

// NewCamera creates a logging camera.
func NewCamera(logger *slog.Logger) *Camera {
	return &Camera{logger: logger.With("sim", "camera")}
}

func (c *Camera) StartVideo(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recording = true
	c.logger.Info("video segment started", "length", d)
	return nil
}

func (c *Camera) StopVideo(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	was := c.recording
	c.recording = false
	return was, nil
}

func (c *Camera) TakePicture(ctx context.Context) error {
	c.logger.Info("picture taken")
	return nil
}

func (c *Camera) Check(ctx context.Context) error { return nil }

// Modem logs SMS sends and always has connectivity.
type Modem struct {
	logger *slog.Logger
}

// NewModem creates a logging modem.
func NewModem(logger *slog.Logger) *Modem {
	return &Modem{logger: logger.With("sim", "modem")}
}

func (m *Modem) SendSMS(ctx context.Context, msg string) error {
	m.logger.Info("sms sent", "body", msg)
	return nil
}

func (m *Modem) HasConnectivity(ctx context.Context) (bool, error) { return true, nil }

func (m *Modem) Check(ctx context.Context) error { return nil }

// Telemetry logs frames.
type Telemetry struct {
	logger *slog.Logger
}

// NewTelemetry creates a logging downlink.
func NewTelemetry(logger *slog.Logger) *Telemetry {
	return &Telemetry{logger: logger.With("sim", "telemetry")}
}

func (t *Telemetry) Send(ctx context.Context, frame domain.TelemetryFrame) error {
	t.logger.Info("frame sent", "phase", frame.Phase, "message", frame.Message)
	return nil
}

func (t *Telemetry) Check(ctx context.Context) error { return nil }

// Battery drains slowly from full.
type Battery struct {
	started time.Time
	mu      sync.Mutex
}

// NewBattery creates a full simulated battery.
func NewBattery() *Battery { return &Battery{} }

func (b *Battery) percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started.IsZero() {
		b.started = time.Now()
	}
	// Roughly 1% per 4 minutes.
	drained := time.Since(b.started).Minutes() / 4 / 100
	return math.Max(1.0-drained, 0)
}

func (b *Battery) MainPercent(ctx context.Context) (float64, error)  { return b.percent(), nil }
func (b *Battery) ModemPercent(ctx context.Context) (float64, error) { return b.percent(), nil }

// Power logs rail switches.
type Power struct {
	logger *slog.Logger
}

// NewPower creates a logging power controller.
func NewPower(logger *slog.Logger) *Power {
	return &Power{logger: logger.With("sim", "power")}
}

func (p *Power) Enable(ctx context.Context, m ports.Module) error {
	p.logger.Info("rail enabled", "module", m)
	return nil
}

func (p *Power) Disable(ctx context.Context, m ports.Module) error {
	p.logger.Info("rail disabled", "module", m)
	return nil
}
