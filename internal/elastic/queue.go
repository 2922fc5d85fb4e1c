package elastic

import (
	"errors"
	"sync"

	"github.com/rzbill/spillway/internal/names"
	pebblestore "github.com/rzbill/spillway/internal/storage/pebble"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

// Queue is a two-stage elastic queue using memory and disk. One producer and
// one consumer per instance; many instances share the subsystem's store,
// each owning its own {id}/{version}/ key range.
type Queue struct {
	sys    *System
	id     string
	logger logpkg.Logger

	mu             sync.Mutex
	memory         [][]byte
	readCounter    int64
	writeCounter   int64
	empty          bool
	peeked         []byte
	currentVersion int64
}

// New constructs a queue for the given service route on the shared
// subsystem, initializing the subsystem on first use.
func New(route string) *Queue {
	return Default().NewQueue(route)
}

// NewQueue constructs a queue for the given service route. Routes outside
// the service-name alphabet are replaced by a sanitized surrogate.
func (s *System) NewQueue(route string) *Queue {
	id := names.Sanitize(route)
	q := &Queue{
		sys:    s,
		id:     id,
		logger: s.logger.WithComponent("elastic").WithField("queue", id),
	}
	// Adopt a fresh generation; construction counts as a reset.
	q.resetLocked()
	return q
}

// ID returns the queue identity.
func (q *Queue) ID() string { return q.id }

// IsClosed reports whether the queue is currently empty, which holds both
// after a drain and for a freshly constructed instance. Callers detecting
// end-of-drain should observe Read returning nil after prior writes.
func (q *Queue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writeCounter == 0
}

// Write appends one event. The first MemoryBuffer events of a generation
// stay in memory; the rest go to the store under this generation's keys.
// A nil or zero-length payload is rejected with ErrEmptyEvent. Otherwise
// Write never blocks beyond the underlying put and never fails logically;
// storage faults propagate to the producer.
func (q *Queue) Write(event []byte) error {
	if len(event) == 0 {
		return ErrEmptyEvent
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.writeCounter < MemoryBuffer {
		q.memory = append(q.memory, event)
	} else {
		key := queueKey(q.id, q.currentVersion, q.writeCounter)
		if err := q.sys.db.Set(key, event); err != nil {
			return transientErr("put "+string(key), err)
		}
	}
	q.writeCounter++
	q.empty = false
	return nil
}

// Peek returns the next event without consuming it. Repeated peeks without
// an intervening Read return the same value; the following Read consumes it.
func (q *Queue) Peek() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.peeked != nil {
		return q.peeked, nil
	}
	ev, err := q.readLocked()
	if err != nil {
		return nil, err
	}
	q.peeked = ev
	return ev, nil
}

// Read consumes and returns the next event, or nil once the consumer has
// caught up with the producer. Catching up closes the queue: counters reset
// and a fresh generation begins. A spilled key that is missing from the
// store is logged and also yields nil, without closing the queue. Neither a
// missing key nor a transient store fault, which surfaces as an error,
// advances the read position, so the next Read retries the same offset.
func (q *Queue) Read() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.readLocked()
}

func (q *Queue) readLocked() ([]byte, error) {
	if q.peeked != nil {
		ev := q.peeked
		q.peeked = nil
		return ev, nil
	}
	if q.readCounter >= q.writeCounter {
		// caught up with writes and thus nothing to read
		q.closeLocked()
		return nil, nil
	}
	if q.readCounter < MemoryBuffer {
		if len(q.memory) == 0 {
			// head must be populated when readCounter < MemoryBuffer <= writeCounter
			q.logger.Errorf("memory head empty at offset %d of %d", q.readCounter, q.writeCounter)
			return nil, nil
		}
		ev := q.memory[0]
		q.memory = q.memory[1:]
		q.readCounter++
		return ev, nil
	}
	key := queueKey(q.id, q.currentVersion, q.readCounter)
	val, err := q.sys.db.Get(key)
	if errors.Is(err, pebblestore.ErrNotFound) {
		q.logger.Errorf("expected %s, actual: missing", key)
		return nil, nil
	}
	if err != nil {
		return nil, transientErr("get "+string(key), err)
	}
	q.readCounter++
	if err := q.sys.db.Delete(key); err != nil {
		q.logger.Warnf("unable to delete %s: %v", key, err)
	}
	return val, nil
}

// Close marks a drain boundary. If the generation spilled to disk and
// unread events remain, the cleaner reclaims this generation's keys in the
// background; a fully drained spill just compacts its range. The queue then
// resets onto a fresh generation and remains usable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closeLocked()
}

func (q *Queue) closeLocked() {
	if q.writeCounter == 0 {
		return
	}
	if q.writeCounter > MemoryBuffer {
		if q.readCounter < q.writeCounter {
			q.sys.cleaner.Submit(generationPrefix(q.id, q.currentVersion))
		} else {
			start := []byte(generationPrefix(q.id, q.currentVersion) + "/")
			if err := q.sys.db.Compact(start, prefixUpperBound(start)); err != nil {
				q.logger.Warnf("compaction failed: %v", err)
			}
		}
	}
	q.resetLocked()
}

func (q *Queue) resetLocked() {
	if q.empty {
		return
	}
	q.empty = true
	q.readCounter, q.writeCounter = 0, 0
	q.memory = nil
	q.currentVersion = q.sys.generation.Add(1)
}

// Destroy closes the queue and additionally schedules reclamation of every
// generation this id ever produced. Intended for when the route this queue
// serves is no longer in service.
func (q *Queue) Destroy() {
	q.Close()
	q.sys.cleaner.Submit(q.id)
}
