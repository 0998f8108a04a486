package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luki/pistats/internal/sensor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.Display.Mode != ModeLine {
		t.Errorf("Display.Mode = %q, want %q", cfg.Display.Mode, ModeLine)
	}
	if cfg.Errors.Policy != "exit" {
		t.Errorf("Errors.Policy = %q, want exit", cfg.Errors.Policy)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[display]
mode = "tui"

[sensors]
source = "lmsensors"

[errors]
policy = "retry"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.Mode != ModeTUI {
		t.Errorf("Display.Mode = %q, want tui", cfg.Display.Mode)
	}
	if cfg.Sensors.Source != SourceLMSensors {
		t.Errorf("Sensors.Source = %q, want lmsensors", cfg.Sensors.Source)
	}
	if cfg.Sensors.SysfsRoot != sensor.DefaultSysfsRoot {
		t.Errorf("Sensors.SysfsRoot = %q, want default kept", cfg.Sensors.SysfsRoot)
	}
	if cfg.Errors.Policy != "retry" {
		t.Errorf("Errors.Policy = %q, want retry", cfg.Errors.Policy)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}

	if _, ok := cfg.SensorSource().(sensor.LMSensorsSource); !ok {
		t.Errorf("SensorSource() = %T, want sensor.LMSensorsSource", cfg.SensorSource())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad toml", "[display\nmode = 1", "parse config"},
		{"bad mode", "[display]\nmode = \"gui\"", "display.mode"},
		{"bad source", "[sensors]\nsource = \"wmi\"", "sensors.source"},
		{"bad policy", "[errors]\npolicy = \"ignore\"", "errors.policy"},
		{"bad level", "[logging]\nlevel = \"trace\"", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSensorSourceDefaultsToHwmon(t *testing.T) {
	cfg := Default()
	cfg.Sensors.SysfsRoot = "/tmp/sys"

	src, ok := cfg.SensorSource().(sensor.HwmonSource)
	if !ok {
		t.Fatalf("SensorSource() = %T, want sensor.HwmonSource", cfg.SensorSource())
	}
	if src.Root != "/tmp/sys" {
		t.Errorf("Root = %q, want /tmp/sys", src.Root)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
