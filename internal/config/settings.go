package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/progressbridge/internal/logging"
)

// BridgeConfig is the [bridge] table.
type BridgeConfig struct {
	LaunchTarget      string `toml:"launch_target"`
	UpdateIntervalMS  int    `toml:"update_interval_ms"`
	GracefulTimeoutMS int    `toml:"graceful_timeout_ms"`
	LockFile          string `toml:"lock_file"`
}

// DefaultBridgeConfig returns the values used when the file omits a key.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		UpdateIntervalMS:  100,
		GracefulTimeoutMS: 2000,
	}
}

// UpdateInterval returns UpdateIntervalMS as a duration.
func (c BridgeConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// GracefulTimeout returns GracefulTimeoutMS as a duration.
func (c BridgeConfig) GracefulTimeout() time.Duration {
	return time.Duration(c.GracefulTimeoutMS) * time.Millisecond
}

// Settings holds the parts of the config file that are re-read on change.
type Settings struct {
	Logging logging.Config
	Bridge  BridgeConfig
}

type settingsFile struct {
	Logging map[string]string `toml:"logging"`
	Bridge  BridgeConfig      `toml:"bridge"`
}

// LoadSettings reads the logging and bridge tables from path. A missing file
// yields defaults; a malformed one is an error.
func LoadSettings(path string) (Settings, error) {
	settings := Settings{
		Logging: defaultLoggingConfig(),
		Bridge:  DefaultBridgeConfig(),
	}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	raw := settingsFile{Bridge: settings.Bridge}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return settings, fmt.Errorf("parse %s: %w", path, err)
	}
	settings.Bridge = raw.Bridge
	applyLoggingTable(&settings.Logging, raw.Logging)

	if settings.Bridge.UpdateIntervalMS <= 0 {
		settings.Bridge.UpdateIntervalMS = DefaultBridgeConfig().UpdateIntervalMS
	}
	if settings.Bridge.GracefulTimeoutMS <= 0 {
		settings.Bridge.GracefulTimeoutMS = DefaultBridgeConfig().GracefulTimeoutMS
	}
	return settings, nil
}

// LoadBridgeConfig reads just the [bridge] table.
func LoadBridgeConfig(path string) (BridgeConfig, error) {
	settings, err := LoadSettings(path)
	return settings.Bridge, err
}

// LoadLoggingConfig reads just the [logging] table. Returns defaults if the
// file doesn't exist or can't be parsed.
func LoadLoggingConfig(path string) logging.Config {
	settings, err := LoadSettings(path)
	if err != nil {
		return defaultLoggingConfig()
	}
	return settings.Logging
}

func defaultLoggingConfig() logging.Config {
	return logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}
}

// applyLoggingTable splits the flat [logging] table into the global keys and
// per-module levels.
func applyLoggingTable(cfg *logging.Config, table map[string]string) {
	for key, value := range table {
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		case "output":
			cfg.Output = value
		default:
			cfg.Modules[key] = value
		}
	}
}
