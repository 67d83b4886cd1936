package mission

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nimbus-hab/nimbus/internal/config"
	"github.com/nimbus-hab/nimbus/internal/logging"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Hardware bundles the collaborators a mission can touch. Entries for
// disabled modules are nil; handlers must consult the configured module
// set before dereferencing.
type Hardware struct {
	GPS       ports.GPS
	Camera    ports.Camera
	Modem     ports.Modem
	Telemetry ports.Telemetry
	Battery   ports.BatteryMonitor
	Power     ports.PowerControl
}

// Context is the read-mostly shared data visible to every phase
// handler: configuration limits, mission start time, capture counters
// and the last known position. Handlers mutate only their own counters,
// through the accessors here; the engine owns everything else.
type Context struct {
	Config   *config.Config
	Hardware Hardware
	Logger   *slog.Logger

	// Tasks is the background task supervisor. Handlers start phase
	// scoped tasks on it; the engine cancels them on every transition.
	Tasks *TaskGroup

	startTime time.Time

	mu       sync.RWMutex
	lastFix  *domain.Fix
	pictures int
	videos   int
}

// NewContext builds the shared mission context. The logger may be nil.
func NewContext(cfg *config.Config, hw Hardware, logger *slog.Logger) *Context {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Context{
		Config:    cfg,
		Hardware:  hw,
		Logger:    logger,
		Tasks:     NewTaskGroup(logger),
		startTime: time.Now().UTC(),
	}
}

// StartTime is when this boot of the mission began.
func (c *Context) StartTime() time.Time {
	return c.startTime
}

// SetLastFix records the most recent valid fix. Called by handlers that
// read the GPS; background tasks only ever read it.
func (c *Context) SetLastFix(fix domain.Fix) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := fix
	c.lastFix = &f
}

// LastFix returns a copy of the last known position, or false when no
// fix has been seen this boot.
func (c *Context) LastFix() (domain.Fix, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastFix == nil {
		return domain.Fix{}, false
	}
	return *c.lastFix, true
}

// AddPicture bumps the still-capture counter.
func (c *Context) AddPicture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pictures++
}

// AddVideo bumps the video-segment counter.
func (c *Context) AddVideo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videos++
}

// Counters returns the capture counters.
func (c *Context) Counters() (pictures, videos int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pictures, c.videos
}
