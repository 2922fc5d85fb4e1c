package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/spillway/internal/config"
	"github.com/rzbill/spillway/internal/holding"
	"github.com/rzbill/spillway/internal/runtime"
	pebblestore "github.com/rzbill/spillway/internal/storage/pebble"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

func main() {
	level := os.Getenv("SPILLWAY_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "spillway",
		Short: "Spillway elastic queue CLI",
		Long:  "Spillway buffers per-route event bursts in memory and spills to a transient disk store. This CLI exercises and inspects the store.",
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (YAML or JSON)")

	rootCmd.AddCommand(newBenchCommand(logger))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newSweepCommand(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}

func newBenchCommand(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Write and drain events through one elastic queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			route, _ := cmd.Flags().GetString("route")
			count, _ := cmd.Flags().GetInt("count")
			size, _ := cmd.Flags().GetInt("size")

			rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger, InstallSignalHook: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			q := rt.Queue(route)
			payload := make([]byte, size)
			for i := range payload {
				payload[i] = byte('a' + i%26)
			}

			start := time.Now()
			for i := 0; i < count; i++ {
				if err := q.Write(payload); err != nil {
					return fmt.Errorf("write %d: %w", i, err)
				}
			}
			wrote := time.Since(start)

			start = time.Now()
			read := 0
			for {
				ev, err := q.Read()
				if err != nil {
					return fmt.Errorf("read %d: %w", read, err)
				}
				if ev == nil {
					break
				}
				read++
			}
			drained := time.Since(start)

			fmt.Printf("route %s: wrote %d events (%d B) in %s, drained %d in %s\n",
				q.ID(), count, size, wrote.Round(time.Millisecond), read, drained.Round(time.Millisecond))
			if read != count {
				return fmt.Errorf("drained %d of %d events", read, count)
			}
			return nil
		},
	}
	cmd.Flags().String("route", "bench.route", "Service route to buffer under")
	cmd.Flags().Int("count", 100000, "Number of events")
	cmd.Flags().Int("size", 128, "Payload size in bytes")
	return cmd
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [holding-area-dir]",
		Short: "List spilled key counts per id/version in a holding area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := pebblestore.Open(pebblestore.Options{DataDir: args[0]})
			if err != nil {
				return err
			}
			defer db.Close()

			iter, err := db.NewIter(&pebble.IterOptions{})
			if err != nil {
				return err
			}
			defer iter.Close()

			counts := map[string]int{}
			for ok := iter.First(); ok; ok = iter.Next() {
				key := string(iter.Key())
				if i := strings.LastIndexByte(key, '/'); i > 0 {
					counts[key[:i]]++
				}
			}
			prefixes := make([]string, 0, len(counts))
			for p := range counts {
				prefixes = append(prefixes, p)
			}
			sort.Strings(prefixes)
			for _, p := range prefixes {
				fmt.Printf("%-48s %d\n", p, counts[p])
			}
			if len(prefixes) == 0 {
				fmt.Println("no spilled events")
			}
			return nil
		},
	}
	return cmd
}

func newSweepCommand(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reclaim stale holding areas under the transient root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			n := holding.SweepStale(cfg.DataStore, cfg.RunningInCloud, cfg.StaleAfter(), logger)
			fmt.Printf("reclaimed %d stale holding area(s) under %s\n", n, cfg.DataStore)
			return nil
		},
	}
	return cmd
}
