package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, SaveFile(path, testEntries()))

	base, err := New(testEntries())
	require.NoError(t, err)
	defer base.Close()

	w, err := NewWatcher(base, path)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w.onReload = func(err error) { reloaded <- err }

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, SaveFile(path, []Entry{{ID: "ratios", Title: "Ratios financiers"}}))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}

	assert.Len(t, base.Entries(), 1)
	_, ok := base.Lookup("ratios")
	assert.True(t, ok)
}

func TestWatcherKeepsEntriesOnBadFile(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, SaveFile(path, testEntries()))

	base, err := New(testEntries())
	require.NoError(t, err)
	defer base.Close()

	w, err := NewWatcher(base, path)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w.onReload = func(err error) { reloaded <- err }

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - id: a\n  - id: a\n"), 0644))

	select {
	case err := <-reloaded:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload was not attempted")
	}

	assert.Len(t, base.Entries(), 3)
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	base, err := New(testEntries())
	require.NoError(t, err)
	defer base.Close()

	w, err := NewWatcher(base, filepath.Join(t.TempDir(), "catalog.yaml"))
	require.NoError(t, err)
	w.Stop()
}
