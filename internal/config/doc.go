// Package config provides loading and environment overlay for Spillway
// configuration. It exposes a Default() baseline, a file loader (JSON or
// YAML by extension), and a SPILLWAY_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/spillway.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
