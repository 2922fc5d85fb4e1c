package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SPILLWAY_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SPILLWAY_DATA_STORE"); v != "" {
		cfg.DataStore = v
	}
	if v := os.Getenv("SPILLWAY_RUNNING_IN_CLOUD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RunningInCloud = b
		}
	}
	if v := os.Getenv("SPILLWAY_HEARTBEAT_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HeartbeatIntervalMs = n
		}
	}
	if v := os.Getenv("SPILLWAY_STALE_AFTER_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StaleAfterMs = n
		}
	}
	if v := os.Getenv("SPILLWAY_STATS_RETENTION_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StatsRetentionMs = n
		}
	}
	if v := os.Getenv("SPILLWAY_FLUSH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FlushIntervalMs = n
		}
	}
	if v := os.Getenv("SPILLWAY_CLEANER_QUEUE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CleanerQueueDepth = n
		}
	}
	if v := os.Getenv("SPILLWAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SPILLWAY_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
