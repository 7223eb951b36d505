package storage

import (
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver string
	Path   string
	Redis  RedisConfig
}

// Open builds the store selected by opts.Driver and initializes it.
// An Init failure is returned alongside the (disabled) store so callers can
// log it and keep running.
func Open(opts Options) (Store, error) {
	var s Store
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		s = NewSQLiteStore(opts.Path)
	case DriverBolt:
		path := opts.Path
		if path == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = strings.TrimSuffix(p, ".db") + ".bolt"
		}
		s = NewBoltStore(path)
	case DriverRedis:
		s = NewRedisStore(opts.Redis)
	case DriverMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}

	return s, s.Init()
}
