package elastic

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	pebblestore "github.com/rzbill/spillway/internal/storage/pebble"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

func newTestCleaner(t *testing.T) (*Cleaner, *pebblestore.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	c := NewCleaner(db, dir, 16, 24*time.Hour, logger)
	c.Start()
	t.Cleanup(c.Stop)
	return c, db, dir
}

func waitForEmptyPrefix(t *testing.T, db *pebblestore.DB, prefix string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := db.Get([]byte(prefix + "/000000000")); err == pebblestore.ErrNotFound {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("keys under %q never reclaimed", prefix)
}

func TestCleanerDeletesOnlySubmittedGeneration(t *testing.T) {
	c, db, _ := newTestCleaner(t)

	for i := 0; i < 30; i++ {
		if err := db.Set(queueKey("route", 1, int64(i)), []byte("x")); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if err := db.Set(queueKey("route", 2, 0), []byte("keep")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// sibling id sharing the submitted prefix as a substring must survive
	if err := db.Set(queueKey("route2", 1, 0), []byte("keep")); err != nil {
		t.Fatalf("set: %v", err)
	}

	c.Submit("route/1")
	waitForEmptyPrefix(t, db, "route/1")

	if _, err := db.Get(queueKey("route", 2, 0)); err != nil {
		t.Fatalf("other generation reclaimed: %v", err)
	}
	if _, err := db.Get(queueKey("route2", 1, 0)); err != nil {
		t.Fatalf("sibling id reclaimed: %v", err)
	}
}

func TestCleanerWholeIDPrefix(t *testing.T) {
	c, db, _ := newTestCleaner(t)

	for version := int64(1); version <= 3; version++ {
		for i := 0; i < 5; i++ {
			if err := db.Set(queueKey("gone", version, int64(i)), []byte("x")); err != nil {
				t.Fatalf("set: %v", err)
			}
		}
	}
	c.Submit("gone")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		left := 0
		for version := int64(1); version <= 3; version++ {
			if _, err := db.Get(queueKey("gone", version, 0)); err == nil {
				left++
			}
		}
		if left == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("destroy-style sweep incomplete")
}

func TestCleanerSweepsOutdatedStatsFiles(t *testing.T) {
	c, db, dir := newTestCleaner(t)

	old := filepath.Join(dir, "je.stat.0.csv")
	current := filepath.Join(dir, "je.stat.csv")
	fresh := filepath.Join(dir, "je.stat.1.csv")
	unrelated := filepath.Join(dir, "notes.csv")
	for _, p := range []string{old, current, fresh, unrelated} {
		if err := os.WriteFile(p, []byte("stats"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	// any request triggers the stats sweep afterwards
	if err := db.Set(queueKey("stats", 1, 0), []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	c.Submit("stats/1")
	waitForEmptyPrefix(t, db, "stats/1")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(old); os.IsNotExist(err) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("outdated stats file survived")
	}
	for _, p := range []string{current, fresh, unrelated} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should survive: %v", p, err)
		}
	}
}

func TestCleanerSubmitNeverBlocks(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.FatalLevel))
	c := NewCleaner(db, dir, 1, 24*time.Hour, logger)
	// worker not started: the channel fills and further submits must drop
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			c.Submit(fmt.Sprintf("p/%d", i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("submit blocked")
	}
}

func TestCleanerSubmitAfterStop(t *testing.T) {
	c, _, _ := newTestCleaner(t)
	c.Stop()
	c.Submit("late/1") // must not panic or block
}
