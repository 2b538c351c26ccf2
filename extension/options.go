package extension

import (
	brigade "github.com/xraph/brigade"
	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/printing"
	"github.com/xraph/brigade/store"
)

// Option configures the Brigade Forge extension.
type Option func(*Extension)

// WithStore sets the store for the brigade engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a brigade.Option through to the underlying engine.
func WithEngineOption(opt brigade.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithSubscriber registers an event subscriber on the engine.
func WithSubscriber(s event.Subscriber) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, brigade.WithSubscriber(s))
	}
}

// WithCatalog sets the item catalog for the engine.
func WithCatalog(c brigade.Catalog) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, brigade.WithCatalog(c))
	}
}

// WithAuthorizer sets the permission authorizer for the engine.
func WithAuthorizer(a brigade.Authorizer) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, brigade.WithAuthorizer(a))
	}
}

// WithPrintDeliverer sets the transport used to deliver rendered tickets.
func WithPrintDeliverer(d printing.Deliverer) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, brigade.WithPrintDeliverer(d))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithGroveDatabase sets the name of the grove.DB to resolve from the DI container.
// The extension will auto-construct the appropriate store backend (postgres/sqlite/mongo)
// based on the grove driver type. Pass an empty string to use the default (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}
