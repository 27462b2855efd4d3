// Package config loads the read-loop settings for goems-decode.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls where frames come from and where accepted lines go.
type Config struct {
	// Port is the serial device carrying the EMS stream.
	Port string `yaml:"port"`
	// Baudrate is the serial speed; the instrument ships at 115200.
	Baudrate int `yaml:"baudrate"`
	// PlaybackFile, when set, replays a captured log instead of opening
	// the serial port.
	PlaybackFile string `yaml:"playback_file"`
	// Loop restarts playback from the beginning at end of file.
	Loop bool `yaml:"loop"`
	// LogFile, when set, appends every accepted line for diagnostics.
	LogFile string `yaml:"log_file"`
}

// Default returns the stock settings for a D120 EMS hookup.
func Default() Config {
	return Config{
		Port:     "/dev/ttyS1",
		Baudrate: 115200,
		Loop:     true,
	}
}

// Load reads a YAML config file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no source could be opened with.
func (c Config) Validate() error {
	if c.PlaybackFile != "" {
		return nil
	}
	if c.Port == "" {
		return fmt.Errorf("either port or playback_file must be set")
	}
	if c.Baudrate <= 0 {
		return fmt.Errorf("baudrate must be positive, got %d", c.Baudrate)
	}
	return nil
}
