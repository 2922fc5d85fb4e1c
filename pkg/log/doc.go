// Package log provides Spillway's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Fields map for structured context. A Logger is assembled from a Formatter
// (text or JSON) and one or more Outputs. Components receive a Logger by
// dependency injection and tag their entries with WithComponent.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.WithComponent("store")
//	l.Infof("holding area %s ready", dir)
//
// # Interop
//
// RedirectStdLog routes the standard library logger through a Logger so that
// libraries writing to package log (Pebble's default event listener among
// them) share the same output. A *BaseLogger also satisfies pebble.Logger
// directly via Infof/Errorf/Fatalf.
package log
