package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/nimbus-hab/nimbus/pkg/ports"
)

// Config is the full boot-time configuration. It is loaded once and
// read-only to the mission core.
type Config struct {
	Debug              bool   `yaml:"debug"`
	DataDir            string `yaml:"data_dir"`
	PowerOffOnShutdown bool   `yaml:"power_off_on_shutdown"`

	Modules ModulesConfig `yaml:"modules"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`

	Battery BatteryConfig `yaml:"battery"`
	Picture PictureConfig `yaml:"picture"`
	Video   VideoConfig   `yaml:"video"`
	Flight  FlightConfig  `yaml:"flight"`

	// Hardware carries per-module transport options (serial device
	// paths, bauds, SMS numbers). Kept as loose maps in YAML and
	// decoded into typed structs on demand, so adding a module does
	// not touch the top-level schema.
	Hardware map[string]map[string]any `yaml:"hardware"`
}

// ModulesConfig enumerates which hardware modules this airframe carries.
type ModulesConfig struct {
	Enabled   []ports.Module `yaml:"enabled"`
	Mandatory []ports.Module `yaml:"mandatory"`
}

// StorageConfig selects the state store backend.
type StorageConfig struct {
	// Backend is "file" (flight) or "redis" (bench rig).
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig configures the bench-rig shared store.
type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// ServerConfig configures the ground-test status HTTP server.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// BatteryConfig holds launch thresholds and the ADC conversion range
// for the main battery, measured through the modem's ADC.
type BatteryConfig struct {
	MainMinPercent  float64 `yaml:"main_min_percent"`
	ModemMinPercent float64 `yaml:"modem_min_percent"`
	MainMinVoltage  float64 `yaml:"main_min_voltage"`
	MainMaxVoltage  float64 `yaml:"main_max_voltage"`
}

// PictureConfig holds still-capture parameters.
type PictureConfig struct {
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	Exif       bool          `yaml:"exif"`
	Interval   time.Duration `yaml:"interval"`
	FirstDelay time.Duration `yaml:"first_delay"`
}

// VideoConfig holds video-capture parameters.
type VideoConfig struct {
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	FPS           int           `yaml:"fps"`
	BitrateKbps   int           `yaml:"bitrate_kbps"`
	SegmentLength time.Duration `yaml:"segment_length"`
}

// FlightConfig holds the mission envelope and the timing bounds the
// engine enforces.
type FlightConfig struct {
	// Length is the expected total flight time, used for the disk
	// space check during Init.
	Length time.Duration `yaml:"length"`
	// ExpectedMaxHeight in meters, used for sanity checks on fixes.
	ExpectedMaxHeight float64 `yaml:"expected_max_height"`

	// FixTimeout bounds AcquiringFix before it escalates.
	FixTimeout time.Duration `yaml:"fix_timeout"`
	// ModuleCheckTimeout bounds each Init self-test probe.
	ModuleCheckTimeout time.Duration `yaml:"module_check_timeout"`
	// SafeModeDwell bounds SafeMode before forced shutdown.
	SafeModeDwell time.Duration `yaml:"safe_mode_dwell"`
	// PollInterval is the default Stay cadence for waiting handlers.
	PollInterval time.Duration `yaml:"poll_interval"`
	// TelemetryInterval is the heartbeat cadence during flight.
	TelemetryInterval time.Duration `yaml:"telemetry_interval"`

	// ApogeeSamples is how many consecutive descending altitude
	// samples count as apogee.
	ApogeeSamples int `yaml:"apogee_samples"`
	// LandingSamples is how many consecutive near-still samples below
	// LandingAltitude count as landed.
	LandingSamples int `yaml:"landing_samples"`
	// LandingAltitude in meters.
	LandingAltitude float64 `yaml:"landing_altitude"`
	// LandingMaxSpeed is the vertical speed (absolute, m/s) below
	// which the probe counts as still.
	LandingMaxSpeed float64 `yaml:"landing_max_speed"`
}

// SerialConfig is the common transport shape of serial-attached modules.
type SerialConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// ModemHardware extends SerialConfig with the SMS recovery number.
type ModemHardware struct {
	SerialConfig `mapstructure:",squash"`
	SMSNumber    string `mapstructure:"sms_number"`
}

// Default returns the configuration used when a key is absent.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Modules: ModulesConfig{
			Enabled:   []ports.Module{ports.ModuleGPS, ports.ModuleCamera, ports.ModuleModem, ports.ModuleTelemetry},
			Mandatory: []ports.Module{ports.ModuleGPS},
		},
		Storage: StorageConfig{Backend: "file"},
		Server:  ServerConfig{Addr: "127.0.0.1:8780"},
		Battery: BatteryConfig{
			MainMinPercent:  0.8,
			ModemMinPercent: 0.7,
			MainMinVoltage:  1.93,
			MainMaxVoltage:  2.93,
		},
		Picture: PictureConfig{
			Width:      3280,
			Height:     2464,
			Exif:       true,
			Interval:   4 * time.Minute,
			FirstDelay: 2 * time.Minute,
		},
		Video: VideoConfig{
			Width:         1920,
			Height:        1080,
			FPS:           30,
			BitrateKbps:   20000,
			SegmentLength: 30 * time.Minute,
		},
		Flight: FlightConfig{
			Length:             3 * time.Hour,
			ExpectedMaxHeight:  35000,
			FixTimeout:         15 * time.Minute,
			ModuleCheckTimeout: 30 * time.Second,
			SafeModeDwell:      2 * time.Hour,
			PollInterval:       time.Second,
			TelemetryInterval:  30 * time.Second,
			ApogeeSamples:      5,
			LandingSamples:     10,
			LandingAltitude:    3000,
			LandingMaxSpeed:    1.0,
		},
	}
}

// Load reads and validates the configuration file at path. YAML is
// parsed into a loose tree first and then decoded through mapstructure,
// which gives us human-friendly durations ("15m") on top of the plain
// YAML scalars.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(tree); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// videoModes lists the sensor's legal width/height/max-fps combinations.
var videoModes = []struct {
	w, h, maxFPS int
}{
	{2592, 1944, 15},
	{1920, 1080, 30},
	{1296, 972, 42},
	{1296, 730, 49},
	{640, 480, 90},
}

// Validate checks the configuration and returns every problem found,
// not just the first: a probe on a launch field should need exactly one
// fix-and-retry cycle.
func (c *Config) Validate() error {
	var errs []string

	if c.Picture.Width > 3280 {
		errs = append(errs, fmt.Sprintf("picture width must be below or equal to 3280px, found %dpx", c.Picture.Width))
	}
	if c.Picture.Height > 2464 {
		errs = append(errs, fmt.Sprintf("picture height must be below or equal to 2464px, found %dpx", c.Picture.Height))
	}
	if c.Video.Width > 2592 {
		errs = append(errs, fmt.Sprintf("video width must be below or equal to 2592px, found %dpx", c.Video.Width))
	}
	if c.Video.Height > 1944 {
		errs = append(errs, fmt.Sprintf("video height must be below or equal to 1944px, found %dpx", c.Video.Height))
	}
	if c.Video.FPS > 90 {
		errs = append(errs, fmt.Sprintf("video framerate must be below or equal to 90fps, found %dfps", c.Video.FPS))
	}
	if !c.videoModeValid() {
		errs = append(errs, fmt.Sprintf("video mode must be one of 2592x1944 1-15fps, 1920x1080 1-30fps, 1296x972 1-42fps, 1296x730 1-49fps, 640x480 1-90fps, found %dx%d %dfps",
			c.Video.Width, c.Video.Height, c.Video.FPS))
	}

	switch c.Storage.Backend {
	case "file":
	case "redis":
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, "storage backend 'redis' requires storage.redis.addr")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}

	for _, m := range c.Modules.Mandatory {
		if !c.ModuleEnabled(m) {
			errs = append(errs, fmt.Sprintf("module %q is mandatory but not enabled", m))
		}
	}

	if c.Flight.SafeModeDwell <= 0 {
		errs = append(errs, "flight.safe_mode_dwell must be positive")
	}
	if c.Flight.FixTimeout <= 0 {
		errs = append(errs, "flight.fix_timeout must be positive")
	}
	if c.Flight.ApogeeSamples < 2 {
		errs = append(errs, "flight.apogee_samples must be at least 2")
	}
	if c.Flight.LandingSamples < 2 {
		errs = append(errs, "flight.landing_samples must be at least 2")
	}
	if c.Battery.MainMaxVoltage <= c.Battery.MainMinVoltage {
		errs = append(errs, "battery.main_max_voltage must be above battery.main_min_voltage")
	}

	if len(errs) > 0 {
		return fmt.Errorf("the configuration is invalid:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}

func (c *Config) videoModeValid() bool {
	for _, m := range videoModes {
		if c.Video.Width == m.w && c.Video.Height == m.h && c.Video.FPS >= 1 && c.Video.FPS <= m.maxFPS {
			return true
		}
	}
	return false
}

// ModuleEnabled reports whether the airframe carries module m.
func (c *Config) ModuleEnabled(m ports.Module) bool {
	for _, e := range c.Modules.Enabled {
		if e == m {
			return true
		}
	}
	return false
}

// ModuleMandatory reports whether a failure of module m fails the phase
// instead of being absorbed as best-effort.
func (c *Config) ModuleMandatory(m ports.Module) bool {
	for _, e := range c.Modules.Mandatory {
		if e == m {
			return true
		}
	}
	return false
}

// DecodeHardware decodes the loose hardware options of module name into
// out, which should be a pointer to SerialConfig, ModemHardware, or a
// module-specific struct.
func (c *Config) DecodeHardware(name string, out any) error {
	opts, ok := c.Hardware[name]
	if !ok {
		return fmt.Errorf("no hardware options for module %q", name)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("decoding hardware options for %q: %w", name, err)
	}
	return nil
}
