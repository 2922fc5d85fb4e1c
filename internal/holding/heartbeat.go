package holding

import (
	"sync"
	"time"

	logpkg "github.com/rzbill/spillway/pkg/log"
)

// Heartbeat keeps a holding area marked live by rewriting its RUNNING marker
// on a fixed interval until stopped.
type Heartbeat struct {
	area     Area
	interval time.Duration
	logger   logpkg.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewHeartbeat creates a heartbeat for the given area.
func NewHeartbeat(area Area, interval time.Duration, logger logpkg.Logger) *Heartbeat {
	return &Heartbeat{
		area:     area,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start writes the marker immediately and then keeps refreshing it.
func (h *Heartbeat) Start() {
	h.touch()
	h.wg.Add(1)
	go h.run()
	h.logger.Infof("holding area heartbeat started for %s", h.area.Dir)
}

func (h *Heartbeat) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.touch()
		}
	}
}

func (h *Heartbeat) touch() {
	if err := h.area.Touch(time.Now()); err != nil {
		h.logger.Warnf("unable to refresh %s: %v", h.area.MarkerPath(), err)
	}
}

// Stop halts the heartbeat. Safe to call more than once.
func (h *Heartbeat) Stop() {
	h.once.Do(func() {
		close(h.done)
		h.wg.Wait()
		h.logger.Infof("holding area heartbeat stopped")
	})
}
