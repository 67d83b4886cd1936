package domain

import "time"

// Fix is a valid GPS reading: position, altitude and the receiver
// timestamp it was taken at.
type Fix struct {
	Time       time.Time `json:"time"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   float64   `json:"altitude"`
	Satellites int       `json:"satellites,omitempty"`
	// VerticalSpeed is derived by the GPS from consecutive readings,
	// in meters per second. Negative means descending.
	VerticalSpeed float64 `json:"vertical_speed,omitempty"`
}

// TelemetryFrame is one best-effort downlink frame.
type TelemetryFrame struct {
	Timestamp time.Time `json:"timestamp"`
	Phase     Phase     `json:"phase"`
	Fix       *Fix      `json:"fix,omitempty"`
	BatteryPc float64   `json:"battery_pc,omitempty"`
	Message   string    `json:"message,omitempty"`
}
