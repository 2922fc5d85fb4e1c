package runtime

import (
	"context"
	"errors"
	"sync"

	cfgpkg "github.com/rzbill/spillway/internal/config"
	"github.com/rzbill/spillway/internal/elastic"
	"github.com/rzbill/spillway/internal/names"
	logpkg "github.com/rzbill/spillway/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
	// InstallSignalHook arms subsystem shutdown on SIGINT/SIGTERM.
	InstallSignalHook bool
}

// Runtime owns the shared subsystem and one elastic queue per route.
type Runtime struct {
	sys    *elastic.System
	config cfgpkg.Config

	mu     sync.Mutex
	queues map[string]*elastic.Queue
}

// Open initializes the shared subsystem and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	sys, err := elastic.OpenSystem(elastic.SystemOptions{
		Config:            opts.Config,
		Logger:            opts.Logger,
		InstallSignalHook: opts.InstallSignalHook,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{
		sys:    sys,
		config: opts.Config,
		queues: make(map[string]*elastic.Queue),
	}, nil
}

// Close shuts the subsystem down: heartbeat and cleaner stop, the store
// closes, and the holding area is cleared.
func (r *Runtime) Close() error {
	if r.sys == nil {
		return nil
	}
	r.sys.Shutdown()
	return nil
}

// CheckHealth checks that the store is usable by opening and closing an
// iterator over it. Nothing is written or read back.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.sys == nil {
		return errors.New("subsystem not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.sys.DB().NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Queue returns the elastic queue for a route, constructing it on first use.
// Lookups use the sanitized route so producers naming the raw route and the
// surrogate observe the same buffer.
func (r *Runtime) Queue(route string) *elastic.Queue {
	id := names.Sanitize(route)
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[id]; ok {
		return q
	}
	q := r.sys.NewQueue(id)
	r.queues[id] = q
	return q
}

// Release destroys the queue for a retired route and forgets it. Every
// generation the route ever spilled is scheduled for reclamation.
func (r *Runtime) Release(route string) {
	id := names.Sanitize(route)
	r.mu.Lock()
	q, ok := r.queues[id]
	delete(r.queues, id)
	r.mu.Unlock()
	if ok {
		q.Destroy()
	}
}

// Routes lists the routes with a live queue.
func (r *Runtime) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.queues))
	for id := range r.queues {
		out = append(out, id)
	}
	return out
}

// System exposes the shared subsystem for inspection tooling.
func (r *Runtime) System() *elastic.System { return r.sys }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
