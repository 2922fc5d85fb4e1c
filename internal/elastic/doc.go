// Package elastic implements the per-route elastic queue: a single-producer /
// single-consumer FIFO that holds the first few events of a generation in
// memory and spills the rest into the shared Pebble store.
//
// # Keyspace
//
// Spilled events live under string keys, lexicographically ordered:
//
//	{id}/{version}/{seq}   seq zero-padded to 9 digits (MaxEvents = 10^8)
//
// id is the sanitized service route. version is taken from a process-wide
// generation counter and changes on every reset, so a reopened queue can
// never observe keys left behind by a previous drain cycle; leftovers are
// inert until the cleaner reclaims them.
//
// # Lifecycle
//
// The first queue constructed through Default() initializes the shared
// subsystem: stale holding areas are swept, the store is opened in the
// active area, the cleaner and heartbeat workers start, and a signal hook
// arms the ordered shutdown. Close is a drain boundary, not disposal: it
// resets the instance onto a fresh generation and the queue remains usable.
//
//	q := elastic.New("orders.intake")
//	_ = q.Write(payload)
//	next, _ := q.Read() // nil once caught up; the queue has then reset
package elastic
