// Package extension provides the Forge extension adapter for Brigade.
//
// It implements the forge.Extension interface to integrate Brigade
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.brigade" or "brigade" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	brigade "github.com/xraph/brigade"
	"github.com/xraph/brigade/store"
	"github.com/xraph/brigade/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "brigade"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant restaurant order fulfillment engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Brigade as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *brigade.Engine
	store      store.Store
	engineOpts []brigade.Option
	useGrove   bool
}

// New creates a new Brigade Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying brigade Engine.
// This is nil until Register is called.
func (e *Extension) Engine() *brigade.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the brigade engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	eng := brigade.New(e.store, e.engineOpts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*brigade.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("brigade: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("brigade: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("brigade: configuration is required but not found in config files; " +
				"ensure 'extensions.brigade' or 'brigade' key exists in your config")
		}

		e.config = programmaticConfig
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("brigade: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("grove_database", e.config.GroveDatabase),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.brigade" first (namespaced pattern).
	if cm.IsSet("extensions.brigade") {
		if err := cm.Bind("extensions.brigade", &cfg); err == nil {
			e.Logger().Debug("brigade: loaded config from file",
				forge.F("key", "extensions.brigade"),
			)
			return cfg, true
		}
		e.Logger().Warn("brigade: failed to bind extensions.brigade config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "brigade" key.
	if cm.IsSet("brigade") {
		if err := cm.Bind("brigade", &cfg); err == nil {
			e.Logger().Debug("brigade: loaded config from file",
				forge.F("key", "brigade"),
			)
			return cfg, true
		}
		e.Logger().Warn("brigade: failed to bind brigade config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if yamlConfig.GroveDatabase == "" && programmaticConfig.GroveDatabase != "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}
	return yamlConfig
}
