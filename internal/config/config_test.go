package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goems.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Join([]string{
		"port: /dev/ttyUSB0",
		"baudrate: 57600",
		"log_file: accepted.log",
	}, "\n")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" || cfg.Baudrate != 57600 {
		t.Fatalf("serial settings: %+v", cfg)
	}
	if cfg.LogFile != "accepted.log" {
		t.Fatalf("log file: %q", cfg.LogFile)
	}
	if !cfg.Loop {
		t.Fatal("loop default lost")
	}
}

func TestLoadPlayback(t *testing.T) {
	cfg, err := Load(writeConfig(t, "playback_file: capture.txt\nport: \"\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlaybackFile != "capture.txt" {
		t.Fatalf("playback file: %q", cfg.PlaybackFile)
	}
}

func TestLoadRejectsBadBaudrate(t *testing.T) {
	if _, err := Load(writeConfig(t, "baudrate: -9600\n")); err == nil {
		t.Fatal("negative baudrate accepted")
	}
}

func TestLoadRejectsEmptySources(t *testing.T) {
	if _, err := Load(writeConfig(t, "port: \"\"\n")); err == nil {
		t.Fatal("config with no source accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
