package ports

import (
	"context"
	"errors"
	"time"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// ErrNoFix is returned by GPS.ReadFix when the receiver is alive but
// has not acquired a fix yet. It is not a transport error: handlers
// treat it as "keep waiting", not as a hardware failure.
var ErrNoFix = errors.New("no gps fix")

// Module names a hardware collaborator in configuration and in the
// Init self-test. What used to be compile-time feature selection in
// older firmware is a runtime enumeration here, so one binary covers
// every hardware variant.
type Module string

const (
	ModuleGPS       Module = "gps"
	ModuleCamera    Module = "camera"
	ModuleModem     Module = "modem"
	ModuleTelemetry Module = "telemetry"
)

// HealthChecker is implemented by collaborators that can verify their
// own hardware during the Init self-test. Check must respect ctx: the
// engine imposes a per-module timeout.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// GPS reads the current fix from the receiver.
type GPS interface {
	// ReadFix returns the latest fix, ErrNoFix while the receiver is
	// still searching, or a transport error.
	ReadFix(ctx context.Context) (domain.Fix, error)
}

// Camera drives the picture/video capture hardware.
type Camera interface {
	// StartVideo begins recording a segment of the given length.
	// A zero duration records until StopVideo.
	StartVideo(ctx context.Context, d time.Duration) error

	// StopVideo stops an in-progress recording. It reports whether a
	// recording was actually running.
	StopVideo(ctx context.Context) (bool, error)

	// TakePicture captures a single still.
	TakePicture(ctx context.Context) error
}

// Modem is the GSM link (SMS plus the board's battery ADC, which is
// how the probe measures its batteries).
type Modem interface {
	// SendSMS sends a text message to the configured recovery number.
	// Best-effort: callers log failures and move on unless the modem
	// is configured mandatory.
	SendSMS(ctx context.Context, msg string) error

	// HasConnectivity reports whether the GSM network is reachable.
	HasConnectivity(ctx context.Context) (bool, error)
}

// Telemetry streams frames over the radio downlink. Best-effort.
type Telemetry interface {
	Send(ctx context.Context, frame domain.TelemetryFrame) error
}

// BatteryMonitor reads charge levels. Percentages are 0..1; a negative
// value means the battery is disconnected.
type BatteryMonitor interface {
	MainPercent(ctx context.Context) (float64, error)
	ModemPercent(ctx context.Context) (float64, error)
}

// PowerControl switches module power rails. Operations are idempotent;
// errors surface as hardware errors to the calling handler.
type PowerControl interface {
	Enable(ctx context.Context, m Module) error
	Disable(ctx context.Context, m Module) error
}
