// Package mock provides scriptable in-memory collaborators for testing
// the engine and phase handlers without physical hardware.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Store is an in-memory StateStore with failure injection.
type Store struct {
	mu      sync.Mutex
	record  *domain.PhaseRecord
	LoadErr error
	SaveErr error

	// Saves collects every record passed to Save, in order.
	Saves []domain.PhaseRecord
}

// NewStore creates an empty mock store.
func NewStore() *Store { return &Store{} }

// Seed pre-loads the store with a record, as if a prior boot wrote it.
func (s *Store) Seed(record *domain.PhaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record.Clone()
}

func (s *Store) Load(ctx context.Context) (*domain.PhaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.record == nil {
		return nil, domain.ErrNoImage
	}
	return s.record.Clone(), nil
}

func (s *Store) Save(ctx context.Context, record *domain.PhaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.record = record.Clone()
	s.Saves = append(s.Saves, *record.Clone())
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

// Current returns the stored record, or nil.
func (s *Store) Current() *domain.PhaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	return s.record.Clone()
}

// GPS replays a scripted sequence of readings. Once the script is
// exhausted the last entry repeats forever.
type GPS struct {
	mu       sync.Mutex
	script   []Reading
	pos      int
	CheckErr error
}

// Reading is one scripted GPS response.
type Reading struct {
	Fix domain.Fix
	Err error
}

// NewGPS creates a GPS that replays script in order.
func NewGPS(script ...Reading) *GPS {
	return &GPS{script: script}
}

// NoFix is a convenience reading for "receiver still searching".
func NoFix() Reading { return Reading{Err: ports.ErrNoFix} }

// FixAt builds a valid reading at the given altitude.
func FixAt(alt float64) Reading {
	return Reading{Fix: domain.Fix{Latitude: 40.45, Longitude: -3.69, Altitude: alt, Satellites: 7}}
}

// Push appends readings to the script.
func (g *GPS) Push(rs ...Reading) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.script = append(g.script, rs...)
}

func (g *GPS) ReadFix(ctx context.Context) (domain.Fix, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.script) == 0 {
		return domain.Fix{}, ports.ErrNoFix
	}
	r := g.script[g.pos]
	if g.pos < len(g.script)-1 {
		g.pos++
	}
	return r.Fix, r.Err
}

func (g *GPS) Check(ctx context.Context) error { return g.CheckErr }

// Camera counts captures and records its running state.
type Camera struct {
	mu        sync.Mutex
	recording bool
	Pictures  int
	Videos    int
	CheckErr  error
	StartErr  error
	PicErr    error
}

// NewCamera creates an idle camera.
func NewCamera() *Camera { return &Camera{} }

func (c *Camera) StartVideo(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StartErr != nil {
		return c.StartErr
	}
	c.recording = true
	c.Videos++
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
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PicErr != nil {
		return c.PicErr
	}
	c.Pictures++
	return nil
}

func (c *Camera) Check(ctx context.Context) error { return c.CheckErr }

// Modem records sent messages.
type Modem struct {
	mu           sync.Mutex
	Sent         []string
	SendErr      error
	CheckErr     error
	Connectivity bool
	ConnErr      error
}

// NewModem creates a connected modem.
func NewModem() *Modem { return &Modem{Connectivity: true} }

func (m *Modem) SendSMS(ctx context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *Modem) HasConnectivity(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Connectivity, m.ConnErr
}

func (m *Modem) Check(ctx context.Context) error { return m.CheckErr }

// Messages returns a copy of sent SMS bodies.
func (m *Modem) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// Telemetry records sent frames.
type Telemetry struct {
	mu      sync.Mutex
	Frames  []domain.TelemetryFrame
	SendErr error
}

// NewTelemetry creates an empty telemetry recorder.
func NewTelemetry() *Telemetry { return &Telemetry{} }

func (t *Telemetry) Send(ctx context.Context, frame domain.TelemetryFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.SendErr != nil {
		return t.SendErr
	}
	t.Frames = append(t.Frames, frame)
	return nil
}

// Sent returns a copy of the recorded frames.
func (t *Telemetry) Sent() []domain.TelemetryFrame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TelemetryFrame, len(t.Frames))
	copy(out, t.Frames)
	return out
}

// Battery reports fixed charge levels.
type Battery struct {
	Main     float64
	Modem    float64
	MainErr  error
	ModemErr error
}

// NewBattery creates a battery monitor reporting the given levels.
func NewBattery(main, modem float64) *Battery {
	return &Battery{Main: main, Modem: modem}
}

func (b *Battery) MainPercent(ctx context.Context) (float64, error) {
	return b.Main, b.MainErr
}

func (b *Battery) ModemPercent(ctx context.Context) (float64, error) {
	return b.Modem, b.ModemErr
}

// Power records rail switches.
type Power struct {
	mu       sync.Mutex
	Enabled  map[ports.Module]bool
	FailWith error
}

// NewPower creates a power controller with all rails on.
func NewPower() *Power {
	return &Power{Enabled: map[ports.Module]bool{}}
}

func (p *Power) Enable(ctx context.Context, m ports.Module) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	p.Enabled[m] = true
	return nil
}

func (p *Power) Disable(ctx context.Context, m ports.Module) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	p.Enabled[m] = false
	return nil
}
