// Package config loads pistats settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/luki/pistats/internal/runner"
	"github.com/luki/pistats/internal/sensor"
)

// Display modes.
const (
	ModeLine = "line"
	ModeTUI  = "tui"
)

// Sensor sources.
const (
	SourceHwmon     = "hwmon"
	SourceLMSensors = "lmsensors"
)

// Config holds all settings. The tick interval is fixed and not part of it.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Sensors SensorsConfig `toml:"sensors"`
	Errors  ErrorsConfig  `toml:"errors"`
	Logging LoggingConfig `toml:"logging"`
}

// DisplayConfig selects how the status line is drawn.
type DisplayConfig struct {
	Mode string `toml:"mode"`
}

// SensorsConfig selects where temperatures come from.
type SensorsConfig struct {
	Source    string `toml:"source"`
	SysfsRoot string `toml:"sysfs_root"`
	Command   string `toml:"command"` // lm-sensors binary
}

// ErrorsConfig controls what a failed frequency or memory read does.
type ErrorsConfig struct {
	Policy string `toml:"policy"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Display: DisplayConfig{Mode: ModeLine},
		Sensors: SensorsConfig{
			Source:    SourceHwmon,
			SysfsRoot: sensor.DefaultSysfsRoot,
			Command:   "sensors",
		},
		Errors:  ErrorsConfig{Policy: string(runner.PolicyExit)},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pistats/config.toml or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pistats", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Display.Mode {
	case ModeLine, ModeTUI:
	default:
		return fmt.Errorf("display.mode %q: want %q or %q", c.Display.Mode, ModeLine, ModeTUI)
	}
	switch c.Sensors.Source {
	case SourceHwmon, SourceLMSensors:
	default:
		return fmt.Errorf("sensors.source %q: want %q or %q", c.Sensors.Source, SourceHwmon, SourceLMSensors)
	}
	if _, err := runner.ParsePolicy(c.Errors.Policy); err != nil {
		return fmt.Errorf("errors.policy: %w", err)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// SensorSource builds the configured temperature source.
func (c Config) SensorSource() sensor.Source {
	if c.Sensors.Source == SourceLMSensors {
		return sensor.LMSensorsSource{Command: c.Sensors.Command}
	}
	return sensor.HwmonSource{Root: c.Sensors.SysfsRoot}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
