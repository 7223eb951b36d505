package config

import (
	"strings"

	"github.com/khanglvm/paloma/internal/logging"
	"github.com/khanglvm/paloma/internal/storage"
	"github.com/robfig/cron/v3"
)

// Validate checks that cfg can be used to start paloma. Failures are
// returned as *FieldError.
func Validate(cfg *Config) error {
	l := cfg.Learning
	if l.StoreKey == "" {
		return fieldErrorf("learning.storeKey", "must not be empty")
	}
	if l.IntermediateAfter < 0 {
		return fieldErrorf("learning.intermediateAfter", "must not be negative")
	}
	if l.ExpertAfter < l.IntermediateAfter {
		return fieldErrorf("learning.expertAfter", "(%d) must be >= intermediateAfter (%d)", l.ExpertAfter, l.IntermediateAfter)
	}
	if l.FlushIntervalMs < 0 {
		return fieldErrorf("learning.flushIntervalMs", "must not be negative")
	}

	switch strings.ToLower(cfg.Storage.Driver) {
	case "", storage.DriverSQLite, storage.DriverBolt, storage.DriverMemory:
	case storage.DriverRedis:
		if cfg.Storage.RedisAddr == "" {
			return fieldErrorf("storage.redisAddr", "required by the redis driver")
		}
	default:
		return fieldErrorf("storage.driver", "unknown driver %q", cfg.Storage.Driver)
	}

	if cfg.Knowledge.SearchLimit < 0 {
		return fieldErrorf("knowledge.searchLimit", "must not be negative")
	}
	if cfg.Knowledge.Watch && cfg.Knowledge.CatalogPath == "" {
		return fieldErrorf("knowledge.watch", "requires knowledge.catalogPath")
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return &FieldError{Field: "logging.level", Err: err}
	}

	if spec := cfg.Server.MaintenanceSpec; spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return &FieldError{Field: "server.maintenanceSpec", Err: err}
		}
	}

	return nil
}
