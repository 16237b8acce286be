// Package config defines the controller and receiver configuration.
//
// Values are layered: defaults from New, then an optional YAML file named by
// POSECONTROL_CONFIG, then POSECONTROL_* environment variables.
package config

import (
	"context"
	"time"
)

// MaxFPS is the highest frame clock rate accepted.
const MaxFPS = 120

// Detector backends.
const (
	DetectorPoseNet = "posenet"
	DetectorMock    = "mock"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the controller HTTP listen address.
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding zones and settings.
	DBPath string `koanf:"db_path"`

	// CameraID selects the capture device.
	CameraID int `koanf:"camera_id"`

	// FPS is the frame clock rate.
	FPS int `koanf:"fps"`

	// Detector selects the pose backend: posenet or mock.
	Detector string `koanf:"detector"`

	// DetectorScript overrides the pose service location.
	DetectorScript string `koanf:"detector_script"`

	// Tray shows the system tray icon.
	Tray bool `koanf:"tray"`

	Dispatch    DispatchConfig    `koanf:"dispatch"`
	Gate        GateConfig        `koanf:"gate"`
	GameControl GameControlConfig `koanf:"gamecontrol"`
}

// DispatchConfig configures delivery of fired commands.
type DispatchConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// GateConfig configures how an active gesture is released.
type GateConfig struct {
	Release  string        `koanf:"release"`
	Cooldown time.Duration `koanf:"cooldown"`
}

// GameControlConfig configures the receiving key-press server.
type GameControlConfig struct {
	Addr      string        `koanf:"addr"`
	PluginDir string        `koanf:"plugin_dir"`
	Plugin    string        `koanf:"plugin"`
	Timeout   time.Duration `koanf:"timeout"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":8090",
		DBPath:   "posecontrol.db",
		CameraID: 0,
		FPS:      15,
		Detector: DetectorPoseNet,
		Tray:     true,
		Dispatch: DispatchConfig{
			BaseURL: "http://localhost:5000/gameControl",
			Timeout: 2 * time.Second,
		},
		Gate: GateConfig{
			Release:  "cooldown",
			Cooldown: time.Second,
		},
		GameControl: GameControlConfig{
			Addr:      ":5000",
			PluginDir: "plugins",
			Plugin:    "keyboard",
			Timeout:   5 * time.Second,
		},
	}
}
