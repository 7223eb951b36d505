package learning

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/khanglvm/paloma/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPersistenceRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()

	first := New(store)
	first.RecordInteraction(UserInteraction{
		Intent:           "howTo",
		Response:         "Étapes.",
		UserSatisfaction: sat(0.9),
		ContextAtTime:    Context{UserID: "u1", Module: "achats"},
	})
	first.Close()

	second := New(store)
	defer second.Close()

	p, ok := second.Profile("u1")
	require.True(t, ok)
	assert.Equal(t, 1, p.FrequentTopics["howTo"])
	assert.Equal(t, len(first.Patterns()), len(second.Patterns()))
	assert.Empty(t, second.Interactions(), "interactions are not persisted")
}

func TestPersistedPatternsCapped(t *testing.T) {
	store := storage.NewMemoryStore()
	s := New(store)
	defer s.Close()

	for i := 0; i < 150; i++ {
		s.AddOrUpdatePattern(LearningPattern{PatternID: string(rune('a'+i%26)) + time.Duration(i).String(), Type: PatternStyle})
	}
	s.RecordInteraction(UserInteraction{Intent: "general"})

	raw, ok, err := store.Load(DefaultStoreKey)
	require.NoError(t, err)
	require.True(t, ok)

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Len(t, snap.Patterns, persistedPatterns)
	assert.Contains(t, snap.UserProfiles, DefaultUserID)
}

func TestLoadCorruptData(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(DefaultStoreKey, "{not json"))

	s := New(store)
	defer s.Close()

	assert.Empty(t, s.Patterns())
	s.RecordInteraction(UserInteraction{Intent: "general"})
	assert.Len(t, s.Interactions(), 1)
}

func TestLoadStoreFailure(t *testing.T) {
	s := New(failingStore{})
	defer s.Close()

	// Save failures are swallowed.
	s.RecordInteraction(UserInteraction{Intent: "general"})
	assert.Len(t, s.Interactions(), 1)
	s.ResetLearningData()
	assert.Empty(t, s.Interactions())
}

func TestCustomStoreKey(t *testing.T) {
	store := storage.NewMemoryStore()
	s := New(store, WithStoreKey("custom"))
	defer s.Close()

	s.RecordInteraction(UserInteraction{Intent: "general"})

	_, ok, _ := store.Load("custom")
	assert.True(t, ok)
	_, ok, _ = store.Load(DefaultStoreKey)
	assert.False(t, ok)
}

func TestFlushIntervalPersistsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := storage.NewMemoryStore()
	s := New(store, WithFlushInterval(time.Hour))

	s.RecordInteraction(UserInteraction{Intent: "general"})
	_, ok, _ := store.Load(DefaultStoreKey)
	assert.False(t, ok, "write is deferred")

	s.Close()
	_, ok, _ = store.Load(DefaultStoreKey)
	assert.True(t, ok)
}

func TestPersistenceWithSQLite(t *testing.T) {
	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "learning.db"))
	require.NoError(t, store.Init())
	defer store.Close()

	s := New(store)
	s.RecordInteraction(UserInteraction{Intent: "what", ContextAtTime: Context{UserID: "u2"}})
	s.Close()

	reloaded := New(store)
	defer reloaded.Close()
	_, ok := reloaded.Profile("u2")
	assert.True(t, ok)
}

// gatedStore blocks the first Save until release is closed.
type gatedStore struct {
	*storage.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: storage.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Save(key, value string) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.MemoryStore.Save(key, value)
}

func closed(ch <-chan struct{}) func() bool {
	return func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
}

func TestResetNotUndoneByInFlightSave(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"sync writer", nil},
		{"flusher", []Option{WithFlushInterval(time.Millisecond)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newGatedStore()
			s := New(store, tt.opts...)

			recorded := make(chan struct{})
			go func() {
				defer close(recorded)
				s.RecordInteraction(UserInteraction{
					Intent:           "howTo",
					Response:         "Étapes.",
					UserSatisfaction: sat(0.9),
					ContextAtTime:    Context{UserID: "alice", Module: "achats"},
				})
			}()
			<-store.entered

			reset := make(chan struct{})
			go func() {
				defer close(reset)
				s.ResetLearningData()
			}()

			assert.Never(t, closed(reset), 50*time.Millisecond, 5*time.Millisecond,
				"reset must wait for the save under way")

			close(store.release)
			<-recorded
			<-reset
			s.Close()

			reloaded := New(store)
			defer reloaded.Close()

			_, ok := reloaded.Profile("alice")
			assert.False(t, ok, "profile must stay deleted after reset")
			assert.Empty(t, reloaded.Patterns())
		})
	}
}

func TestSweepPersistsRemoval(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	s := New(store, WithClock(clock.Now))

	s.AddOrUpdatePattern(LearningPattern{PatternID: "stale", Type: PatternStyle})
	s.RecordInteraction(UserInteraction{Intent: "general"})

	clock.Advance(31 * 24 * time.Hour)
	require.Positive(t, s.Sweep())
	s.Close()

	raw, ok, err := store.Load(DefaultStoreKey)
	require.NoError(t, err)
	require.True(t, ok)

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	for _, p := range snap.Patterns {
		assert.NotEqual(t, "stale", p.PatternID, "swept pattern must not stay persisted")
	}
}

func TestLoadDropsStalePatterns(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newFakeClock()

	old := clock.Now().Add(-31 * 24 * time.Hour)
	data, err := json.Marshal(Snapshot{
		Patterns: []LearningPattern{
			{PatternID: "stale", Type: PatternStyle, Occurrences: 1, LastSeen: old},
			{PatternID: "kept", Type: PatternStyle, Occurrences: 3, LastSeen: old},
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(DefaultStoreKey, string(data)))

	s := New(store, WithClock(clock.Now))
	defer s.Close()

	patterns := s.Patterns()
	require.Len(t, patterns, 1)
	assert.Equal(t, "kept", patterns[0].PatternID)
}
