package learning

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/khanglvm/paloma/internal/storage"
	"go.uber.org/goleak"
)

// countingStore records every save.
type countingStore struct {
	*storage.MemoryStore
	mu    sync.Mutex
	saves []string
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore()}
}

func (c *countingStore) Save(key, value string) error {
	err := c.MemoryStore.Save(key, value)
	c.mu.Lock()
	c.saves = append(c.saves, value)
	c.mu.Unlock()
	return err
}

func (c *countingStore) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saves)
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Init() error                       { return nil }
func (failingStore) Load(string) (string, bool, error) { return "", false, errors.New("boom") }
func (failingStore) Save(string, string) error         { return errors.New("boom") }
func (failingStore) Delete(string) error               { return errors.New("boom") }
func (failingStore) Close() error                      { return nil }

func TestFlusher_WritesLatestSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newCountingStore()
	f := NewFlusher(store, "k", 20*time.Millisecond)
	defer f.Close()

	f.Write(0, []byte("one"))
	f.Write(0, []byte("two"))
	f.Write(0, []byte("three"))

	deadline := time.Now().Add(2 * time.Second)
	for store.saveCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	value, ok, err := store.Load("k")
	if err != nil || !ok {
		t.Fatalf("expected snapshot to be written, ok=%v err=%v", ok, err)
	}
	if value != "three" {
		t.Errorf("expected latest snapshot %q, got %q", "three", value)
	}
	if n := store.saveCount(); n != 1 {
		t.Errorf("expected a single coalesced save, got %d", n)
	}
}

func TestFlusher_CloseFlushesPending(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newCountingStore()
	f := NewFlusher(store, "k", time.Hour)

	f.Write(0, []byte("pending"))
	f.Close()

	value, ok, _ := store.Load("k")
	if !ok || value != "pending" {
		t.Errorf("expected pending snapshot to be flushed on close, got %q (ok=%v)", value, ok)
	}
}

func TestFlusher_CloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := NewFlusher(newCountingStore(), "k", time.Hour)
	f.Close()
	f.Close()
}

func TestFlusher_ResetDropsOlderEpochs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newCountingStore()
	f := NewFlusher(store, "k", time.Hour)

	f.Write(0, []byte("before"))
	if err := f.Reset(1); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	f.Write(0, []byte("late"))
	f.Flush()

	if _, ok, _ := store.Load("k"); ok {
		t.Error("expected snapshots from before the reset not to be written")
	}

	f.Write(1, []byte("after"))
	f.Close()

	value, ok, _ := store.Load("k")
	if !ok || value != "after" {
		t.Errorf("expected snapshot from the new epoch to be written, got %q (ok=%v)", value, ok)
	}
}

func TestFlusher_StoreErrorDoesNotStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := NewFlusher(failingStore{}, "k", time.Millisecond)
	f.Write(0, []byte("x"))
	f.Flush()
	f.Write(0, []byte("y"))
	f.Close()

	if f.Pending() {
		t.Error("expected pending snapshot to be consumed even when the store fails")
	}
}

func TestFlusher_WriteIsNonBlocking(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := NewFlusher(newCountingStore(), "k", time.Hour)
	defer f.Close()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		f.Write(0, []byte("x"))
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Write is blocking: took %v, expected <100ms", elapsed)
	}
}
