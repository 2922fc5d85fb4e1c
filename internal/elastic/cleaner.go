package elastic

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/spillway/internal/storage/pebble"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

const (
	cleanerBatchLimit = 1024

	statsPrefix  = "je.stat."
	statsSuffix  = ".csv"
	statsCurrent = "je.stat.csv"
)

// Cleaner is the single background worker that reclaims retired keyspace. It
// drains a bounded channel of prefix strings; for each request it deletes
// every key under "{prefix}/", compacts the deleted range when anything was
// removed, and sweeps rotated store statistics files from the holding area.
//
// Submitting never blocks the caller. Requests dropped on overflow only
// delay reclamation: keys under a retired generation are inert and picked up
// again by the stale-area sweep if the whole area is lost.
type Cleaner struct {
	db        *pebblestore.DB
	dir       string
	retention time.Duration
	logger    logpkg.Logger

	ch   chan string
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewCleaner creates a cleaner over the shared store and holding area dir.
func NewCleaner(db *pebblestore.DB, dir string, depth int, retention time.Duration, logger logpkg.Logger) *Cleaner {
	if depth < 1 {
		depth = 1
	}
	return &Cleaner{
		db:        db,
		dir:       dir,
		retention: retention,
		logger:    logger.WithComponent("cleaner"),
		ch:        make(chan string, depth),
		done:      make(chan struct{}),
	}
}

// Start launches the worker. One worker per cleaner; requests are processed
// strictly one at a time.
func (c *Cleaner) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop halts the worker after the in-flight request, if any, completes.
// Safe to call more than once.
func (c *Cleaner) Stop() {
	c.once.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
}

// Submit enqueues a prefix for reclamation without blocking. An overflowing
// queue drops the request with a warning.
func (c *Cleaner) Submit(prefix string) {
	select {
	case <-c.done:
		c.logger.Warnf("cleaner stopped, dropping request for %s", prefix)
		return
	default:
	}
	select {
	case c.ch <- prefix:
	default:
		c.logger.Warnf("cleaner queue full, dropping request for %s", prefix)
	}
}

func (c *Cleaner) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case prefix := <-c.ch:
			c.sweep(prefix)
			c.sweepStats()
		}
	}
}

// sweep deletes every key under "{prefix}/" and compacts the range when
// anything was removed. Failures are logged and the request ends; leftover
// keys are inert because no instance reads a retired generation.
func (c *Cleaner) sweep(prefix string) {
	full := []byte(prefix + "/")
	upper := prefixUpperBound(full)

	iter, err := c.db.NewIter(&pebble.IterOptions{LowerBound: full, UpperBound: upper})
	if err != nil {
		c.logger.Warnf("unable to scan %s: %v", prefix, err)
		return
	}
	defer iter.Close()

	deleted := 0
	for ok := iter.First(); ok; {
		b := c.db.NewBatch()
		n := 0
		for ok && n < cleanerBatchLimit {
			if err := b.Delete(iter.Key(), nil); err != nil {
				b.Close()
				c.logger.Warnf("unable to scan %s: %v", prefix, err)
				return
			}
			n++
			ok = iter.Next()
		}
		if n > 0 {
			if err := c.db.CommitBatch(b); err != nil {
				b.Close()
				c.logger.Warnf("unable to scan %s: %v", prefix, err)
				return
			}
			deleted += n
		}
		b.Close()
	}

	if deleted > 0 {
		if err := c.db.Compact(full, upper); err != nil {
			c.logger.Warnf("compaction after %s failed: %v", prefix, err)
		}
		plural := "s"
		if deleted == 1 {
			plural = ""
		}
		c.logger.Infof("cleared %d unread event%s for %s", deleted, plural, prefix)
	}
}

// sweepStats removes rotated statistics files older than the retention
// window. The current stats file is always kept.
func (c *Cleaner) sweepStats() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-c.retention)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, statsPrefix) || !strings.HasSuffix(name, statsSuffix) || name == statsCurrent {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.dir, name)
		if err := os.Remove(path); err == nil {
			c.logger.Infof("outdated %s deleted", path)
		}
	}
}
