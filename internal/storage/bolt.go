package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("paloma")

// BoltStore implements Store on a single bbolt bucket.
type BoltStore struct {
	db      *bolt.DB
	path    string
	enabled bool
	mu      sync.Mutex
}

// NewBoltStore creates a bbolt store at path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path, enabled: path != ""}
}

// Init opens the database file and creates the bucket.
func (b *BoltStore) Init() error {
	if !b.enabled {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		b.enabled = false
		return fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bolt.Open(b.path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		b.enabled = false
		log.Warn().Err(err).Str("path", b.path).Msg("bolt store disabled")
		return fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		b.enabled = false
		return fmt.Errorf("failed to create bolt bucket: %w", err)
	}

	b.db = db
	return nil
}

// Load returns the value stored under key.
func (b *BoltStore) Load(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.db == nil {
		return "", false, nil
	}

	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if value == nil {
		return "", false, nil
	}

	return string(value), true, nil
}

// Save stores value under key.
func (b *BoltStore) Save(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.db == nil {
		return nil
	}

	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	}); err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (b *BoltStore) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.db == nil {
		return nil
	}

	if err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}

	return nil
}

// Close closes the database file.
func (b *BoltStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	if err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}
