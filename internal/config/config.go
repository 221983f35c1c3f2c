// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/courtlytics/pbp/internal/domain/shot"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics-only HTTP listener, e.g. ":9090".
	// Empty disables the listener; the engine has no other network surface.
	MetricsAddr string `koanf:"metrics_addr"`

	// WorkerCount sets the number of concurrent game workers. Processing
	// within one game is strictly sequential; workers parallelize across
	// games only.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory game job queue.
	QueueSize int `koanf:"queue_size"`

	// SinkDriver selects the persistence sink: "sqlite" or "memory".
	SinkDriver string `koanf:"sink_driver"`

	// SinkPath is the SQLite database path (":memory:" for ephemeral).
	SinkPath string `koanf:"sink_path"`

	// SinkWriteTimeoutMS bounds one game's persistence write. Timeouts apply
	// only at I/O boundaries, never inside the in-memory reduction.
	SinkWriteTimeoutMS int `koanf:"sink_write_timeout_ms"`

	// ClutchClockSeconds and ClutchMargin define the clutch window predicate.
	ClutchClockSeconds float64 `koanf:"clutch_clock_seconds"`
	ClutchMargin       int     `koanf:"clutch_margin"`

	// Zones is the shot zone-classification threshold table.
	Zones shot.Thresholds `koanf:"zones"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		MetricsAddr:        "",
		WorkerCount:        runtime.NumCPU() * 2,
		QueueSize:          1024,
		SinkDriver:         "sqlite",
		SinkPath:           "pbp.db",
		SinkWriteTimeoutMS: 10_000,
		ClutchClockSeconds: 300,
		ClutchMargin:       5,
		Zones:              shot.DefaultThresholds(),
	}
}
