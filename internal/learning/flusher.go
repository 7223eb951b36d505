package learning

import (
	"sync"
	"time"

	"github.com/khanglvm/paloma/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultFlushInterval is how long the Flusher waits after a snapshot
	// before writing it.
	DefaultFlushInterval = 2 * time.Second
)

// Flusher writes learning snapshots in the background. Only the latest
// snapshot handed to Write is kept; older pending ones are dropped.
type Flusher struct {
	store    storage.Store
	key      string
	interval time.Duration

	mu           sync.Mutex
	pending      []byte
	pendingEpoch uint64
	epoch        uint64 // snapshots older than this are stale

	writeMu sync.Mutex // serializes store writes and resets

	signal   chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewFlusher starts a flusher that saves to store under key.
func NewFlusher(store storage.Store, key string, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	f := &Flusher{
		store:    store,
		key:      key,
		interval: interval,
		signal:   make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}

	f.wg.Add(1)
	go f.run()

	return f
}

// Write replaces the pending snapshot (non-blocking). Snapshots from an
// epoch before the last Reset are dropped.
func (f *Flusher) Write(epoch uint64, snapshot []byte) {
	f.mu.Lock()
	if epoch < f.epoch {
		f.mu.Unlock()
		return
	}
	f.pending = snapshot
	f.pendingEpoch = epoch
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
		// A flush is already scheduled.
	}
}

// Reset waits for an in-flight write, starts epoch and deletes the stored
// snapshot. Pending snapshots from earlier epochs are dropped.
func (f *Flusher) Reset(epoch uint64) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.Lock()
	f.epoch = epoch
	if f.pendingEpoch < epoch {
		f.pending = nil
	}
	f.mu.Unlock()

	return f.store.Delete(f.key)
}

// Flush writes the pending snapshot now.
func (f *Flusher) Flush() {
	f.mu.Lock()
	snapshot, epoch := f.pending, f.pendingEpoch
	f.pending = nil
	f.mu.Unlock()

	if snapshot == nil {
		return
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	// A Reset may have run while this snapshot waited for writeMu.
	f.mu.Lock()
	stale := epoch < f.epoch
	f.mu.Unlock()
	if stale {
		return
	}
	saveSnapshot(f.store, f.key, snapshot)
}

// Pending reports whether a snapshot is waiting to be written.
func (f *Flusher) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

// Close stops the background loop after writing the pending snapshot.
func (f *Flusher) Close() {
	f.stopOnce.Do(func() {
		close(f.stopChan)
		f.wg.Wait()
	})
}

// run waits for snapshots and writes them after the flush interval.
func (f *Flusher) run() {
	defer f.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-f.signal:
			if fire == nil {
				if timer == nil {
					timer = time.NewTimer(f.interval)
				} else {
					timer.Reset(f.interval)
				}
				fire = timer.C
			}

		case <-fire:
			fire = nil
			f.Flush()

		case <-f.stopChan:
			f.Flush()
			log.Debug().Str("key", f.key).Msg("learning flusher stopped")
			return
		}
	}
}
