/*
Package storage implements the key-value persistence layer used to checkpoint
the learning state.

Every backend stores opaque string blobs under string keys and degrades
gracefully: when the backing store cannot be opened the store is disabled,
reads report "not found" and writes become no-ops. The learning state is a
best-effort cache, so losing it only costs personalization.

The default backend is SQLite at ~/.paloma/learning.db using modernc.org/sqlite
(a pure Go, CGo-free implementation). bbolt, redis and an in-memory map are
available through Open.
*/
package storage

// Store defines the key-value persistence capability.
type Store interface {
	// Init opens the backing store and runs migrations.
	Init() error

	// Load returns the value stored under key. ok is false when the key is absent.
	Load(key string) (value string, ok bool, err error)

	// Save stores value under key, replacing any previous value.
	Save(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the backing store.
	Close() error
}
