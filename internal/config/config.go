package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DataStore is the root directory for transient holding areas.
	DataStore string `json:"transientDataStore" yaml:"transientDataStore"`
	// RunningInCloud selects the shared-root holding area layout: the root
	// itself hosts the store instead of a per-instance subdirectory.
	RunningInCloud bool `json:"runningInCloud" yaml:"runningInCloud"`

	// HeartbeatIntervalMs is how often the RUNNING marker is rewritten.
	HeartbeatIntervalMs int `json:"heartbeatIntervalMs" yaml:"heartbeatIntervalMs"`
	// StaleAfterMs is the RUNNING age beyond which a holding area is
	// considered abandoned and reclaimed.
	StaleAfterMs int `json:"staleAfterMs" yaml:"staleAfterMs"`
	// StatsRetentionMs is how long rotated store statistics files are kept.
	StatsRetentionMs int `json:"statsRetentionMs" yaml:"statsRetentionMs"`
	// FlushIntervalMs is the periodic store checkpoint interval.
	FlushIntervalMs int `json:"flushIntervalMs" yaml:"flushIntervalMs"`
	// CleanerQueueDepth bounds the cleaner's request channel.
	CleanerQueueDepth int `json:"cleanerQueueDepth" yaml:"cleanerQueueDepth"`

	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataStore:           "/tmp/reactive",
		RunningInCloud:      false,
		HeartbeatIntervalMs: 20_000,
		StaleAfterMs:        60_000,
		StatsRetentionMs:    int((24 * time.Hour).Milliseconds()),
		FlushIntervalMs:     60_000,
		CleanerQueueDepth:   256,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// HeartbeatInterval returns the heartbeat period as a duration.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// StaleAfter returns the stale-area threshold as a duration.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMs) * time.Millisecond
}

// StatsRetention returns the statistics file retention as a duration.
func (c Config) StatsRetention() time.Duration {
	return time.Duration(c.StatsRetentionMs) * time.Millisecond
}

// FlushInterval returns the store checkpoint period as a duration.
func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DataStore == "" {
		return errors.New("transientDataStore must not be empty")
	}
	if c.HeartbeatIntervalMs <= 0 {
		return errors.New("heartbeatIntervalMs must be positive")
	}
	if c.StaleAfterMs < c.HeartbeatIntervalMs {
		return errors.New("staleAfterMs must be at least heartbeatIntervalMs")
	}
	if c.CleanerQueueDepth < 1 {
		return errors.New("cleanerQueueDepth must be at least 1")
	}
	return nil
}
