// Package pebblestore provides a thin wrapper around Pebble with fsync
// policy, batches, range iteration, and a periodic checkpoint flusher. One DB
// is opened per process and shared by every queue instance; Pebble serializes
// concurrent mutations.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir:       dir,
//	    FlushInterval: time.Minute,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Point ops
//	_ = db.Set([]byte("k"), []byte("v"))
//	v, _ := db.Get([]byte("k"))
//	_ = db.Delete([]byte("k"))
//
//	// Batched deletes for range cleanup
//	b := db.NewBatch()
//	_ = b.Delete([]byte("k2"), nil)
//	_ = db.CommitBatch(b)
package pebblestore
