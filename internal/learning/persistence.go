package learning

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/khanglvm/paloma/internal/metrics"
	"github.com/khanglvm/paloma/internal/storage"
	"github.com/rs/zerolog/log"
)

// persistedPatterns is how many of the most recent patterns are saved.
const persistedPatterns = 100

// Snapshot is the persisted learning state.
type Snapshot struct {
	Patterns     []LearningPattern       `json:"patterns"`
	UserProfiles map[string]*UserProfile `json:"userProfiles"`
	LastUpdate   time.Time               `json:"lastUpdate"`
}

// SnapshotWriter persists encoded snapshots on a best-effort basis.
//
// Every snapshot carries the epoch it was taken in. Reset starts a new
// epoch; snapshots from earlier epochs are dropped instead of written, so a
// reset cannot be undone by a write that was already under way.
type SnapshotWriter interface {
	// Write hands over a snapshot taken in epoch. It may be written later
	// or replaced by a newer one before it is.
	Write(epoch uint64, snapshot []byte)
	// Reset waits for any in-flight write, drops snapshots older than
	// epoch and deletes the stored one.
	Reset(epoch uint64) error
	// Flush writes any pending snapshot now.
	Flush()
	// Close flushes and releases background resources.
	Close()
}

// syncWriter saves every snapshot immediately.
type syncWriter struct {
	store storage.Store
	key   string

	mu    sync.Mutex
	epoch uint64
}

func (w *syncWriter) Write(epoch uint64, snapshot []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if epoch < w.epoch {
		return
	}
	saveSnapshot(w.store, w.key, snapshot)
}

func (w *syncWriter) Reset(epoch uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.epoch = epoch
	return w.store.Delete(w.key)
}

func (w *syncWriter) Flush() {}
func (w *syncWriter) Close() {}

func saveSnapshot(store storage.Store, key string, snapshot []byte) {
	if snapshot == nil {
		return
	}
	if err := store.Save(key, string(snapshot)); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save").Inc()
		log.Warn().Err(err).Str("key", key).Msg("failed to persist learning data")
	}
}

// snapshotLocked encodes the persisted subset of the state.
func (s *System) snapshotLocked() []byte {
	patterns := s.patterns
	if len(patterns) > persistedPatterns {
		patterns = patterns[len(patterns)-persistedPatterns:]
	}

	data, err := json.Marshal(Snapshot{
		Patterns:     patterns,
		UserProfiles: s.profiles,
		LastUpdate:   s.now(),
	})
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("encode").Inc()
		log.Warn().Err(err).Msg("failed to encode learning data")
		return nil
	}
	return data
}

// load restores the persisted snapshot. Missing or corrupt data leaves the
// system empty.
func (s *System) load() {
	raw, ok, err := s.store.Load(s.key)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		log.Warn().Err(err).Str("key", s.key).Msg("failed to load learning data, starting empty")
		return
	}
	if !ok {
		return
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		log.Warn().Err(err).Str("key", s.key).Msg("corrupt learning data, starting empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.patterns = snap.Patterns
	s.profiles = make(map[string]*UserProfile, len(snap.UserProfiles))
	for id, p := range snap.UserProfiles {
		if p == nil {
			continue
		}
		if p.FrequentTopics == nil {
			p.FrequentTopics = make(map[string]int)
		}
		s.profiles[id] = p
	}
	if removed := s.sweepLocked(); removed > 0 {
		log.Debug().Int("removed", removed).Msg("stale patterns dropped on load")
	}
	metrics.Patterns.Set(float64(len(s.patterns)))

	log.Debug().
		Int("patterns", len(s.patterns)).
		Int("profiles", len(s.profiles)).
		Time("last_update", snap.LastUpdate).
		Msg("learning data loaded")
}
