package learning

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/paloma/internal/metrics"
	"github.com/khanglvm/paloma/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultStoreKey is the key the learning snapshot is saved under.
	DefaultStoreKey = "paloma_learning_data"

	// maxInteractions triggers a trim of the interaction log down to
	// keptInteractions.
	maxInteractions  = 1000
	keptInteractions = 800

	// maxAdaptationHistory bounds each profile's adaptation history.
	maxAdaptationHistory = 100
)

// System is the learning store. It is safe for concurrent use.
type System struct {
	mu           sync.RWMutex
	enabled      bool
	interactions []UserInteraction
	patterns     []LearningPattern
	profiles     map[string]*UserProfile
	rules        []adaptationRule
	// epoch advances on every reset; snapshots carry the epoch they were
	// taken in.
	epoch uint64

	store  storage.Store
	key    string
	writer SnapshotWriter

	now       func() time.Time
	expertise ExpertisePolicy
	trend     TrendFunc
	matcher   PatternMatcher
	flushIntv time.Duration
}

// Option configures a System.
type Option func(*System)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *System) { s.now = now }
}

// WithExpertisePolicy replaces the default expertise thresholds.
func WithExpertisePolicy(p ExpertisePolicy) Option {
	return func(s *System) { s.expertise = p }
}

// WithTrendFunc replaces the default improvement trend.
func WithTrendFunc(f TrendFunc) Option {
	return func(s *System) { s.trend = f }
}

// WithPatternMatcher replaces the default relevant-pattern test.
func WithPatternMatcher(m PatternMatcher) Option {
	return func(s *System) { s.matcher = m }
}

// WithStoreKey sets the key the snapshot is persisted under.
func WithStoreKey(key string) Option {
	return func(s *System) {
		if key != "" {
			s.key = key
		}
	}
}

// WithFlushInterval persists snapshots through a background Flusher that
// writes at most once per interval. Zero keeps synchronous writes.
func WithFlushInterval(d time.Duration) Option {
	return func(s *System) { s.flushIntv = d }
}

// WithEnabled sets the initial learning state.
func WithEnabled(enabled bool) Option {
	return func(s *System) { s.enabled = enabled }
}

// New creates a System backed by store and loads any persisted snapshot.
// A nil store keeps state in memory only.
func New(store storage.Store, opts ...Option) *System {
	if store == nil {
		store = storage.NewMemoryStore()
	}

	s := &System{
		enabled:   true,
		profiles:  make(map[string]*UserProfile),
		store:     store,
		key:       DefaultStoreKey,
		now:       time.Now,
		expertise: DefaultExpertisePolicy(),
		trend:     WindowTrend,
		matcher:   SameIntentOrModule,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.flushIntv > 0 {
		s.writer = NewFlusher(store, s.key, s.flushIntv)
	} else {
		s.writer = &syncWriter{store: store, key: s.key}
	}

	s.rules = builtinRules()
	s.load()

	return s
}

// Close flushes pending state and stops background work. The store is
// owned by the caller and is not closed.
func (s *System) Close() {
	s.writer.Close()
}

// Flush writes any pending snapshot now.
func (s *System) Flush() {
	s.writer.Flush()
}

// EnableLearning turns recording on.
func (s *System) EnableLearning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	log.Info().Msg("learning enabled")
}

// DisableLearning turns recording off. Existing state is kept.
func (s *System) DisableLearning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	log.Info().Msg("learning disabled")
}

// IsEnabled reports whether learning is on.
func (s *System) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// RecordInteraction learns from one interaction and persists the result.
// It is a no-op while learning is disabled.
func (s *System) RecordInteraction(in UserInteraction) {
	s.mu.Lock()

	if !s.enabled {
		s.mu.Unlock()
		return
	}

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = s.now()
	}
	if in.UserSatisfaction != nil {
		v := clamp01(*in.UserSatisfaction)
		in.UserSatisfaction = &v
	}

	s.interactions = append(s.interactions, in)
	if len(s.interactions) > maxInteractions {
		trimmed := make([]UserInteraction, keptInteractions)
		copy(trimmed, s.interactions[len(s.interactions)-keptInteractions:])
		s.interactions = trimmed
	}

	s.updateProfileLocked(in)
	s.analyzeTemporalLocked(in)
	s.analyzeContentLocked(in)
	s.analyzeContextLocked(in)

	outcome := metrics.OutcomeNeutral
	if sat, ok := in.satisfaction(); ok {
		switch {
		case sat > successThreshold:
			s.learnFromSuccessLocked(in)
			outcome = metrics.OutcomeSuccess
		case sat < failureThreshold:
			s.learnFromFailureLocked(in)
			outcome = metrics.OutcomeFailure
		}
	}

	snapshot := s.snapshotLocked()
	epoch := s.epoch
	metrics.Patterns.Set(float64(len(s.patterns)))
	s.mu.Unlock()

	metrics.Interactions.WithLabelValues(outcome).Inc()
	s.writer.Write(epoch, snapshot)
}

// RecentInteractions returns up to n of the most recent interactions,
// oldest first.
func (s *System) RecentInteractions(n int) []UserInteraction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recentLocked(n)
}

func (s *System) recentLocked(n int) []UserInteraction {
	start := len(s.interactions) - n
	if start < 0 || n < 0 {
		start = 0
	}
	return append([]UserInteraction(nil), s.interactions[start:]...)
}

// Interactions returns the whole interaction log, oldest first.
func (s *System) Interactions() []UserInteraction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]UserInteraction(nil), s.interactions...)
}

// Patterns returns a copy of the global patterns.
func (s *System) Patterns() []LearningPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]LearningPattern(nil), s.patterns...)
}

// Profile returns a copy of a user's profile.
func (s *System) Profile(userID string) (*UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// ExportLearningData returns a full copy of the learning state.
func (s *System) ExportLearningData() ExportData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make(map[string]*UserProfile, len(s.profiles))
	for id, p := range s.profiles {
		profiles[id] = p.clone()
	}

	rules := make([]string, len(s.rules))
	for i, r := range s.rules {
		rules[i] = r.name
	}

	return ExportData{
		Enabled:      s.enabled,
		ExportedAt:   s.now(),
		Interactions: append([]UserInteraction(nil), s.interactions...),
		Patterns:     append([]LearningPattern(nil), s.patterns...),
		UserProfiles: profiles,
		Rules:        rules,
	}
}

// ResetLearningData clears all learned state and deletes the snapshot.
// Snapshots taken before the reset are never written afterwards.
func (s *System) ResetLearningData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.interactions = nil
	s.patterns = nil
	s.profiles = make(map[string]*UserProfile)
	s.rules = builtinRules()
	metrics.Patterns.Set(0)

	// Writers never take s.mu, so waiting for an in-flight save here is safe.
	if err := s.writer.Reset(s.epoch); err != nil {
		metrics.PersistenceFailures.WithLabelValues("delete").Inc()
		log.Warn().Err(err).Msg("failed to delete learning data")
	}
	log.Info().Msg("learning data reset")
}

// Sweep runs the pattern retention sweep outside of a pattern update and
// persists the result when patterns were removed.
func (s *System) Sweep() int {
	s.mu.Lock()
	removed := s.sweepLocked()
	metrics.Patterns.Set(float64(len(s.patterns)))

	var snapshot []byte
	if removed > 0 {
		snapshot = s.snapshotLocked()
	}
	epoch := s.epoch
	s.mu.Unlock()

	if snapshot != nil {
		s.writer.Write(epoch, snapshot)
	}
	return removed
}

// sortedTopics returns topic names by descending count, then name.
func sortedTopics(topics map[string]int) []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if topics[names[i]] != topics[names[j]] {
			return topics[names[i]] > topics[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
