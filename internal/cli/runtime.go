package cli

import (
	"fmt"
	"io"

	"github.com/khanglvm/paloma/internal/assistant"
	"github.com/khanglvm/paloma/internal/config"
	"github.com/khanglvm/paloma/internal/knowledge"
	"github.com/khanglvm/paloma/internal/learning"
	"github.com/khanglvm/paloma/internal/logging"
	"github.com/khanglvm/paloma/internal/storage"
	"github.com/rs/zerolog/log"
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	configPath string
	logLevel   string
}

// resolveConfigPath returns the --config value or the default location.
func (o *globalOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.GetDefaultConfigPath()
}

// loadConfig loads (creating if needed) the configuration and sets up
// logging from it.
func (o *globalOptions) loadConfig() (*config.Config, string, io.Closer, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, "", nil, err
	}

	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	closer, err := logging.Setup(logging.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.JSON,
		File:  config.ExpandPath(cfg.Logging.File),
	})
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	return cfg, path, closer, nil
}

// runtime wires the assistant from configuration.
type runtime struct {
	cfg     *config.Config
	cfgPath string

	kb        *knowledge.Base
	store     storage.Store
	learning  *learning.System
	generator *assistant.Generator

	logCloser io.Closer
}

// openRuntime builds every component named by the configuration. Storage
// failures degrade to a disabled store instead of aborting.
func openRuntime(opts *globalOptions) (*runtime, error) {
	cfg, path, logCloser, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, cfgPath: path, logCloser: logCloser}

	kb, err := openKnowledge(cfg.Knowledge)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.kb = kb

	store, err := storage.Open(cfg.Storage.Options())
	if err != nil {
		if store == nil {
			rt.Close()
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		log.Warn().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage unavailable, learning will not persist")
	}
	rt.store = store

	rt.learning = learning.New(store,
		learning.WithEnabled(cfg.Learning.Enabled),
		learning.WithStoreKey(cfg.Learning.StoreKey),
		learning.WithExpertisePolicy(cfg.Learning.ExpertisePolicy()),
		learning.WithFlushInterval(cfg.Learning.FlushInterval()),
	)
	rt.generator = assistant.New(kb, rt.learning)

	log.Debug().
		Str("config", path).
		Str("driver", cfg.Storage.Driver).
		Bool("learning", cfg.Learning.Enabled).
		Msg("runtime ready")

	return rt, nil
}

// openKnowledge indexes the configured catalog or the built-in one.
func openKnowledge(cfg config.KnowledgeConfig) (*knowledge.Base, error) {
	opts := []knowledge.Option{knowledge.WithSearchLimit(cfg.SearchLimit)}

	if cfg.CatalogPath == "" {
		return knowledge.NewDefault(opts...)
	}

	entries, err := knowledge.LoadFile(config.ExpandPath(cfg.CatalogPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge catalog: %w", err)
	}
	return knowledge.New(entries, opts...)
}

// Close flushes learning state and releases every resource.
func (rt *runtime) Close() {
	if rt.learning != nil {
		rt.learning.Close()
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}
	if rt.kb != nil {
		if err := rt.kb.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close knowledge index")
		}
	}
	if rt.logCloser != nil {
		rt.logCloser.Close()
	}
}
