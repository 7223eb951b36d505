/*
Package config handles loading and saving paloma configuration.

Configuration is stored in ~/.paloma.json. Every key can be overridden with a
PALOMA_ environment variable, dots replaced by underscores
(PALOMA_STORAGE_DRIVER, PALOMA_LOGGING_LEVEL).

Schema:

	{
	  "learning": {
	    "enabled": true,
	    "storeKey": "paloma_learning_data",
	    "intermediateAfter": 10,
	    "expertAfter": 50,
	    "flushIntervalMs": 2000
	  },
	  "storage": {
	    "driver": "sqlite",
	    "path": "~/.paloma/learning.db",
	    "redisAddr": "localhost:6379"
	  },
	  "knowledge": {"catalogPath": "", "watch": false, "searchLimit": 5},
	  "logging": {"level": "info", "file": "", "json": false},
	  "server": {"metricsAddr": "", "maintenanceSpec": "@every 1h"}
	}
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/storage"
)

// Config represents the root configuration structure.
type Config struct {
	Learning  LearningConfig  `json:"learning" mapstructure:"learning"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Knowledge KnowledgeConfig `json:"knowledge" mapstructure:"knowledge"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
}

// LearningConfig tunes the learning system.
type LearningConfig struct {
	// Enabled turns adaptive learning on or off.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// StoreKey is the key the learning snapshot is saved under.
	StoreKey string `json:"storeKey" mapstructure:"storeKey"`

	// IntermediateAfter and ExpertAfter are the interaction counts at which
	// a user is promoted.
	IntermediateAfter int `json:"intermediateAfter" mapstructure:"intermediateAfter"`
	ExpertAfter       int `json:"expertAfter" mapstructure:"expertAfter"`

	// FlushIntervalMs debounces snapshot writes. 0 writes synchronously.
	FlushIntervalMs int `json:"flushIntervalMs" mapstructure:"flushIntervalMs"`
}

// FlushInterval returns FlushIntervalMs as a duration.
func (c LearningConfig) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMs) * time.Millisecond
}

// ExpertisePolicy returns the promotion thresholds as a policy.
func (c LearningConfig) ExpertisePolicy() learning.ThresholdPolicy {
	return learning.ThresholdPolicy{
		IntermediateAfter: c.IntermediateAfter,
		ExpertAfter:       c.ExpertAfter,
	}
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	// Driver is one of sqlite, bolt, redis or memory.
	Driver string `json:"driver" mapstructure:"driver"`

	// Path is the database file for sqlite and bolt.
	Path string `json:"path,omitempty" mapstructure:"path"`

	RedisAddr     string `json:"redisAddr,omitempty" mapstructure:"redisAddr"`
	RedisPassword string `json:"redisPassword,omitempty" mapstructure:"redisPassword"`
	RedisDB       int    `json:"redisDB,omitempty" mapstructure:"redisDB"`
}

// Options converts the section into storage.Open options.
func (c StorageConfig) Options() storage.Options {
	return storage.Options{
		Driver: c.Driver,
		Path:   ExpandPath(c.Path),
		Redis: storage.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
}

// KnowledgeConfig locates the help catalog.
type KnowledgeConfig struct {
	// CatalogPath is a YAML catalog. Empty uses the built-in catalog.
	CatalogPath string `json:"catalogPath,omitempty" mapstructure:"catalogPath"`

	// Watch reloads the catalog when the file changes (serve only).
	Watch bool `json:"watch" mapstructure:"watch"`

	SearchLimit int `json:"searchLimit" mapstructure:"searchLimit"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file,omitempty" mapstructure:"file"`
	JSON  bool   `json:"json" mapstructure:"json"`
}

// ServerConfig configures paloma serve.
type ServerConfig struct {
	// MetricsAddr exposes Prometheus metrics over HTTP when set.
	MetricsAddr string `json:"metricsAddr,omitempty" mapstructure:"metricsAddr"`

	// MaintenanceSpec is the cron schedule of the retention sweep.
	MaintenanceSpec string `json:"maintenanceSpec" mapstructure:"maintenanceSpec"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Learning: LearningConfig{
			Enabled:           true,
			StoreKey:          learning.DefaultStoreKey,
			IntermediateAfter: learning.DefaultExpertisePolicy().IntermediateAfter,
			ExpertAfter:       learning.DefaultExpertisePolicy().ExpertAfter,
			FlushIntervalMs:   int(learning.DefaultFlushInterval / time.Millisecond),
		},
		Storage: StorageConfig{
			Driver: storage.DriverSQLite,
			Path:   "~/.paloma/learning.db",
		},
		Knowledge: KnowledgeConfig{
			SearchLimit: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			MaintenanceSpec: "@every 1h",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.paloma.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".paloma.json"), nil
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
