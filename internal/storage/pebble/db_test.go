package pebblestore

import (
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCRUD(t *testing.T) {
	db := newTestDB(t)

	key := []byte("k1")
	val := []byte("v1")
	if err := db.Set(key, val); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("got %q want %q", got, val)
	}

	if err := db.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRangeIteration(t *testing.T) {
	db := newTestDB(t)

	pairs := map[string]string{
		"q/1/000000000": "a",
		"q/1/000000001": "b",
		"q/2/000000000": "c",
		"r/1/000000000": "d",
	}
	for k, v := range pairs {
		if err := db.Set([]byte(k), []byte(v)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: []byte("q/1/")})
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	defer iter.Close()

	var keys []string
	for ok := iter.First(); ok; ok = iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if len(keys) != 4 {
		t.Fatalf("want 4 keys from lower bound, got %d: %v", len(keys), keys)
	}
	if keys[0] != "q/1/000000000" || keys[1] != "q/1/000000001" {
		t.Fatalf("lexicographic order broken: %v", keys)
	}
}

func TestBatchCommit(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Delete([]byte("missing"), nil); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	if err := db.CommitBatch(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	if _, err := db.Get([]byte("a")); err != nil {
		t.Fatalf("get after batch: %v", err)
	}
}

func TestDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set([]byte("persist"), []byte("yes")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	got, err := db2.Get([]byte("persist"))
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "yes" {
		t.Fatalf("got %q", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(Options{DataDir: dir, FlushInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// let the flusher run at least once
	time.Sleep(30 * time.Millisecond)
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCompactRange(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 100; i++ {
		k := []byte{'z', byte(i)}
		if err := db.Set(k, []byte("payload")); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	for i := 0; i < 100; i++ {
		if err := db.Delete([]byte{'z', byte(i)}); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	if err := db.Compact([]byte{'z'}, []byte{'z', 0xff}); err != nil {
		t.Fatalf("compact: %v", err)
	}
}
