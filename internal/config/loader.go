package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ayusman/posecontrol/internal/gesture"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POSECONTROL_"

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file if POSECONTROL_CONFIG is set
//  3. env (prefix POSECONTROL_; a double underscore descends into a section,
//     so POSECONTROL_GATE__COOLDOWN sets gate.cooldown)
func Load(ctx context.Context) (*Config, error) {
	cfg := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log_level %q", c.LogLevel)
	}
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if c.FPS <= 0 || c.FPS > MaxFPS {
		return invalid("fps must be between 1 and %d, got %d", MaxFPS, c.FPS)
	}
	if c.CameraID < 0 {
		return invalid("camera_id must not be negative")
	}
	if c.Detector != DetectorPoseNet && c.Detector != DetectorMock {
		return invalid("detector %q", c.Detector)
	}

	u, err := url.Parse(c.Dispatch.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("dispatch.base_url %q", c.Dispatch.BaseURL)
	}
	if c.Dispatch.Timeout <= 0 {
		return invalid("dispatch.timeout must be positive")
	}

	if _, err := gesture.ParseReleasePolicy(c.Gate.Release); err != nil {
		return invalid("gate.release: %v", err)
	}
	if c.Gate.Cooldown <= 0 {
		return invalid("gate.cooldown must be positive")
	}

	if c.GameControl.Addr == "" {
		return invalid("gamecontrol.addr must not be empty")
	}
	if c.GameControl.Plugin == "" {
		return invalid("gamecontrol.plugin must not be empty")
	}
	if c.GameControl.Timeout <= 0 {
		return invalid("gamecontrol.timeout must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
