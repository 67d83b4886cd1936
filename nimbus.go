package nimbus

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	fileadapter "github.com/nimbus-hab/nimbus/internal/adapters/file"
	httpadapter "github.com/nimbus-hab/nimbus/internal/adapters/http"
	redisadapter "github.com/nimbus-hab/nimbus/internal/adapters/redis"
	simadapter "github.com/nimbus-hab/nimbus/internal/adapters/sim"
	"github.com/nimbus-hab/nimbus/internal/config"
	"github.com/nimbus-hab/nimbus/internal/logging"
	"github.com/nimbus-hab/nimbus/internal/telemetry"
	"github.com/nimbus-hab/nimbus/pkg/domain"
	"github.com/nimbus-hab/nimbus/pkg/mission"
	"github.com/nimbus-hab/nimbus/pkg/mission/handlers"
	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Mission is the high-level entry point: configuration in, a runnable
// flight controller out. It wraps the engine with store selection,
// logging, metrics and the optional ground status server.
type Mission struct {
	cfg      *config.Config
	engine   *mission.Engine
	mctx     *mission.Context
	logger   *slog.Logger
	registry *prometheus.Registry
	server   *httpadapter.Server
	closers  []io.Closer
}

// Option configures the Mission.
type Option func(*missionOpts)

type missionOpts struct {
	hardware *mission.Hardware
	store    ports.StateStore
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	sim      bool
}

// WithHardware injects the airframe's hardware collaborators.
func WithHardware(hw mission.Hardware) Option {
	return func(o *missionOpts) { o.hardware = &hw }
}

// WithSimulatedHardware replaces the airframe with the built-in flight
// simulation, for desk runs.
func WithSimulatedHardware() Option {
	return func(o *missionOpts) { o.sim = true }
}

// WithStore overrides the store selected by the configuration.
func WithStore(store ports.StateStore) Option {
	return func(o *missionOpts) { o.store = store }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *missionOpts) { o.logger = logger }
}

// WithLifecycleHooks registers observability hooks. They are chained
// after the built-in metrics hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *missionOpts) { o.hooks = hooks }
}

// New wires a mission from configuration. The caller must provide
// hardware via WithHardware or WithSimulatedHardware.
func New(cfg *config.Config, opts ...Option) (*Mission, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o missionOpts
	for _, opt := range opts {
		opt(&o)
	}

	m := &Mission{cfg: cfg}

	logger := o.logger
	if logger == nil {
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		var closer io.Closer
		var err error
		logger, closer, err = logging.NewMission(cfg.DataDir, level)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, closer)
	}
	m.logger = logger

	hw, err := m.resolveHardware(&o)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		switch cfg.Storage.Backend {
		case "redis":
			rs := redisadapter.New(cfg.Storage.Redis.Addr, redisPrefix(cfg))
			m.closers = append(m.closers, rs)
			store = rs
		default:
			store = fileadapter.New(cfg.DataDir)
		}
	}

	m.mctx = mission.NewContext(cfg, hw, logger)

	m.registry = prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(m.registry)

	engine, err := mission.NewEngine(store, m.mctx, handlers.All(),
		mission.WithLogger(logger),
		mission.WithHooks(metrics.Hooks(o.hooks)),
	)
	if err != nil {
		return nil, err
	}
	m.engine = engine

	if cfg.Server.Enabled {
		m.server = httpadapter.NewServer(cfg.Server.Addr, engine.Record, m.mctx.Counters,
			m.registry, logger.With("component", "status-server"))
	}
	return m, nil
}

func (m *Mission) resolveHardware(o *missionOpts) (mission.Hardware, error) {
	if o.hardware != nil {
		return *o.hardware, nil
	}
	if !o.sim {
		return mission.Hardware{}, fmt.Errorf("no hardware wired: use WithHardware or WithSimulatedHardware")
	}
	simLog := m.logger.With("component", "sim")
	return mission.Hardware{
		GPS:       simadapter.NewGPS(simadapter.DefaultProfile()),
		Camera:    simadapter.NewCamera(simLog),
		Modem:     simadapter.NewModem(simLog),
		Telemetry: simadapter.NewTelemetry(simLog),
		Battery:   simadapter.NewBattery(),
		Power:     simadapter.NewPower(simLog),
	}, nil
}

func redisPrefix(cfg *config.Config) redisadapter.Option {
	prefix := cfg.Storage.Redis.Prefix
	if prefix == "" {
		prefix = "nimbus:"
	}
	return redisadapter.WithPrefix(prefix)
}

// Run flies the mission to completion. The status server, when enabled,
// lives exactly as long as the engine run.
func (m *Mission) Run(ctx context.Context) error {
	if m.server != nil {
		serverCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()
		go func() {
			if err := m.server.Start(serverCtx); err != nil {
				m.logger.Warn("status server stopped", "error", err)
			}
		}()
	}
	return m.engine.Run(ctx)
}

// Record returns a copy of the current phase record, or nil before boot.
func (m *Mission) Record() *domain.PhaseRecord {
	return m.engine.Record()
}

// Close releases the log file and any store connections.
func (m *Mission) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
