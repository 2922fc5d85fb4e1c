package pebblestore

import (
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed write.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within a small window.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application; entries
	// become durable at the next checkpoint flush.
	FsyncModeNever
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = pebble.ErrNotFound

// Options configures the Pebble store wrapper.
type Options struct {
	// DataDir is the path to the Pebble database directory. The directory is
	// created if absent.
	DataDir string
	// Fsync determines when to sync the WAL. The default, FsyncModeNever,
	// matches a checkpoint-durable holding area: the store is transient by
	// design and a crashed area is reclaimed wholesale at next start.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// FlushInterval enables a background checkpoint flush at this period.
	// Zero disables the flusher.
	FlushInterval time.Duration
	// EventLogger receives Pebble's own event output. Optional.
	EventLogger pebble.Logger
	// PebbleOptions allows advanced tuning. If nil, defaults are used. No
	// free-disk margin is configured: the store may fill the device and
	// out-of-space errors surface to callers.
	PebbleOptions *pebble.Options
}

// DB wraps a Pebble database instance with fsync policy and basic helpers.
type DB struct {
	inner     *pebble.DB
	writeSync bool

	flushEvery time.Duration
	flushDone  chan struct{}
	flushWG    sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if opts.EventLogger != nil {
		po.Logger = opts.EventLogger
	}

	switch opts.Fsync {
	case FsyncModeAlways:
		// Sync passed per write; WALMinSyncInterval left at default.
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		interval := opts.FsyncInterval
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		// FsyncModeNever / unspecified: rely on the periodic flusher.
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}

	db := &DB{
		inner:      inner,
		writeSync:  opts.Fsync == FsyncModeAlways,
		flushEvery: opts.FlushInterval,
		flushDone:  make(chan struct{}),
	}
	if db.flushEvery > 0 {
		db.flushWG.Add(1)
		go db.flushLoop()
	}
	return db, nil
}

// flushLoop checkpoints memtable contents periodically so unsynced writes
// reach disk within one interval.
func (db *DB) flushLoop() {
	defer db.flushWG.Done()
	ticker := time.NewTicker(db.flushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-db.flushDone:
			return
		case <-ticker.C:
			_ = db.Flush()
		}
	}
}

// Flush forces a memtable checkpoint.
func (db *DB) Flush() error {
	return db.inner.Flush()
}

// Close stops the flusher and closes the Pebble database. Safe to call more
// than once.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	db.closeOnce.Do(func() {
		close(db.flushDone)
		db.flushWG.Wait()
		db.closeErr = db.inner.Close()
	})
	return db.closeErr
}

// Set inserts or overwrites a key.
func (db *DB) Set(key, value []byte) error {
	return db.inner.Set(key, value, db.writeOpts())
}

// Get copies the value for the given key. Returns ErrNotFound when absent.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// Delete removes a key.
func (db *DB) Delete(key []byte) error {
	return db.inner.Delete(key, db.writeOpts())
}

// NewBatch creates a new batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch with the configured fsync policy.
func (db *DB) CommitBatch(b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	return b.Commit(db.writeOpts())
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}

// Compact reclaims space from deleted entries in the key range [start, end).
func (db *DB) Compact(start, end []byte) error {
	return db.inner.Compact(start, end, true)
}

func (db *DB) writeOpts() *pebble.WriteOptions {
	if db.writeSync {
		return pebble.Sync
	}
	return pebble.NoSync
}
