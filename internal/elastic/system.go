package elastic

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rzbill/spillway/internal/config"
	"github.com/rzbill/spillway/internal/holding"
	pebblestore "github.com/rzbill/spillway/internal/storage/pebble"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

const appName = "spillway"

// System is the process-wide subsystem shared by every queue instance: the
// holding area, the store, the cleaner and heartbeat workers, and the
// generation counter that namespaces disk keys across queue lifecycles.
type System struct {
	cfg    config.Config
	logger logpkg.Logger

	area    holding.Area
	db      *pebblestore.DB
	cleaner *Cleaner
	hb      *holding.Heartbeat

	origin     string
	generation atomic.Int64

	sigCh        chan os.Signal
	shutdownOnce sync.Once
}

// SystemOptions configures OpenSystem.
type SystemOptions struct {
	Config config.Config
	Logger logpkg.Logger
	// InstallSignalHook arms Shutdown on SIGINT/SIGTERM.
	InstallSignalHook bool
}

// OpenSystem reclaims stale holding areas under the configured root, opens
// the shared store in this instance's area, and starts the cleaner and
// heartbeat workers. It is called once per process; queues share the result.
func OpenSystem(opts SystemOptions) (*System, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}

	s := &System{cfg: cfg, logger: logger}
	s.origin = strings.ToLower(ulid.Make().String())

	holding.SweepStale(cfg.DataStore, cfg.RunningInCloud, cfg.StaleAfter(), logger)

	s.area = holding.Resolve(cfg.DataStore, cfg.RunningInCloud, s.InstanceID())
	if err := s.area.Create(); err != nil {
		return nil, fmt.Errorf("unable to create holding area in %s: %w", s.area.Dir, err)
	}

	started := time.Now()
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       s.area.Dir,
		FlushInterval: cfg.FlushInterval(),
		EventLogger:   logger.WithComponent("pebble"),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open store in %s: %w", s.area.Dir, err)
	}
	s.db = db

	s.cleaner = NewCleaner(db, s.area.Dir, cfg.CleanerQueueDepth, cfg.StatsRetention(), logger)
	s.cleaner.Start()

	s.hb = holding.NewHeartbeat(s.area, cfg.HeartbeatInterval(), logger)
	s.hb.Start()

	logger.Infof("created holding area %s in %s", s.area.Dir, time.Since(started).Round(time.Millisecond))

	if opts.InstallSignalHook {
		s.sigCh = make(chan os.Signal, 1)
		signal.Notify(s.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			if _, ok := <-s.sigCh; ok {
				s.Shutdown()
			}
		}()
	}
	return s, nil
}

// Shutdown stops the heartbeat and cleaner, closes the store, and clears the
// holding area. Each failure is logged on its own so one does not mask the
// others. Safe to call more than once.
func (s *System) Shutdown() {
	s.shutdownOnce.Do(func() {
		if s.sigCh != nil {
			signal.Stop(s.sigCh)
			close(s.sigCh)
		}
		s.hb.Stop()
		s.cleaner.Stop()
		if err := s.db.Close(); err != nil {
			s.logger.Warnf("exception while closing store: %v", err)
		}
		if err := s.area.Remove(); err != nil {
			s.logger.Warnf("unable to clear holding area %s: %v", s.area.Dir, err)
		}
		s.logger.Infof("holding area %s cleared", s.area.Dir)
	})
}

// InstanceID is the stable identity of this process, naming its holding
// area under the transient root.
func (s *System) InstanceID() string {
	return appName + "-" + s.origin
}

// Origin is the per-process identifier component of InstanceID.
func (s *System) Origin() string { return s.origin }

// DB exposes the shared store for inspection tooling.
func (s *System) DB() *pebblestore.DB { return s.db }

// Area returns the active holding area.
func (s *System) Area() holding.Area { return s.area }

// Config returns the subsystem configuration.
func (s *System) Config() config.Config { return s.cfg }

var (
	defaultOnce sync.Once
	defaultSys  *System
)

// Default returns the process-wide subsystem, initializing it on first use
// from config defaults plus the environment. An open failure is fatal: the
// queue subsystem cannot function without its backing store.
func Default() *System {
	defaultOnce.Do(func() {
		cfg := config.Default()
		config.FromEnv(&cfg)
		level, _ := logpkg.ParseLevel(cfg.LogLevel)
		var formatter logpkg.Formatter = &logpkg.TextFormatter{}
		if cfg.LogFormat == "json" {
			formatter = &logpkg.JSONFormatter{}
		}
		logger := logpkg.NewLogger(logpkg.WithLevel(level), logpkg.WithFormatter(formatter))
		sys, err := OpenSystem(SystemOptions{Config: cfg, Logger: logger, InstallSignalHook: true})
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defaultSys = sys
	})
	return defaultSys
}
