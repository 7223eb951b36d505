package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "PALOMA"

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads config with enhanced error handling. Missing keys take
// their default value and PALOMA_* variables override the file.
func LoadFrom(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile reads config like LoadFrom but ignores the environment. Use it
// to edit the file without persisting overrides.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	// Check file existence first
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'paloma config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	// Check read permissions
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f.Close()

	v := newViper(withEnv)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("JSON parse error: %v", err),
			Hint:    "Restore from .bak file if available",
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Check value types against the documented schema",
		}
	}

	return &cfg, nil
}

// LoadOrCreate loads path, writing the defaults there first when the file
// does not exist.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	var notFound *ConfigNotFoundError
	if !errors.As(err, &notFound) {
		return cfg, err
	}

	if err := Save(NewConfig(), path); err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// newViper returns a viper instance seeded with the defaults. Defaults
// also make every key visible to AutomaticEnv.
func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	d := NewConfig()
	v.SetDefault("learning.enabled", d.Learning.Enabled)
	v.SetDefault("learning.storeKey", d.Learning.StoreKey)
	v.SetDefault("learning.intermediateAfter", d.Learning.IntermediateAfter)
	v.SetDefault("learning.expertAfter", d.Learning.ExpertAfter)
	v.SetDefault("learning.flushIntervalMs", d.Learning.FlushIntervalMs)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.redisAddr", d.Storage.RedisAddr)
	v.SetDefault("storage.redisPassword", d.Storage.RedisPassword)
	v.SetDefault("storage.redisDB", d.Storage.RedisDB)
	v.SetDefault("knowledge.catalogPath", d.Knowledge.CatalogPath)
	v.SetDefault("knowledge.watch", d.Knowledge.Watch)
	v.SetDefault("knowledge.searchLimit", d.Knowledge.SearchLimit)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.json", d.Logging.JSON)
	v.SetDefault("server.metricsAddr", d.Server.MetricsAddr)
	v.SetDefault("server.maintenanceSpec", d.Server.MaintenanceSpec)
	return v
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
