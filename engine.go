package brigade

import (
	"context"
	"log/slog"

	"github.com/xraph/brigade/event"
	"github.com/xraph/brigade/printing"
	"github.com/xraph/brigade/store"
)

// Engine is the order fulfillment core: the order ledger, payment ledger,
// print routing, and cash recording behind one facade.
type Engine struct {
	store      store.Store
	bus        *event.Bus
	logger     *slog.Logger
	catalog    Catalog
	authorizer Authorizer
	deliverer  printing.Deliverer
}

// New creates a new Engine. The internal print router and cash recorder
// subscribe to the bus first, so they always run before any subscriber
// registered through WithSubscriber.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		bus:    event.NewBus(),
		logger: slog.Default(),
	}

	var external []event.Subscriber
	for _, opt := range opts {
		opt(e, &external)
	}

	e.bus.WithLogger(e.logger)

	_ = e.bus.Subscribe(&printRouter{engine: e})  //nolint:errcheck // names are unique
	_ = e.bus.Subscribe(&cashRecorder{engine: e}) //nolint:errcheck // names are unique

	for _, sub := range external {
		if err := e.bus.Subscribe(sub); err != nil {
			e.logger.Warn("subscriber registration failed",
				"subscriber", sub.Name(),
				"error", err,
			)
		}
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine, *[]event.Subscriber)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine, _ *[]event.Subscriber) {
		e.logger = logger
	}
}

// WithCatalog sets the menu resolution collaborator. Required for AddLine.
func WithCatalog(c Catalog) Option {
	return func(e *Engine, _ *[]event.Subscriber) {
		e.catalog = c
	}
}

// WithAuthorizer sets the permission collaborator. Without one, every
// elevated operation is denied.
func WithAuthorizer(a Authorizer) Option {
	return func(e *Engine, _ *[]event.Subscriber) {
		e.authorizer = a
	}
}

// WithPrintDeliverer sets the physical print transport. Without one,
// processing a print job fails with ErrNoDeliverer.
func WithPrintDeliverer(d printing.Deliverer) Option {
	return func(e *Engine, _ *[]event.Subscriber) {
		e.deliverer = d
	}
}

// WithSubscriber registers an external event subscriber. External
// subscribers run after the built-in print router and cash recorder, in
// registration order.
func WithSubscriber(s event.Subscriber) Option {
	return func(_ *Engine, external *[]event.Subscriber) {
		*external = append(*external, s)
	}
}

// Start prepares the engine: runs store migrations and reports readiness.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.logger.Info("brigade engine started",
		"subscribers", e.bus.Subscribers(),
	)

	return nil
}

// Stop shuts down the engine and closes the store.
func (e *Engine) Stop() error {
	return e.store.Close()
}

// authorize runs a permission check through the configured Authorizer.
// A nil authorizer denies all elevated permissions.
func (e *Engine) authorize(ctx context.Context, scope Scope, permission string) error {
	if e.authorizer == nil {
		return ErrForbidden
	}

	ok, err := e.authorizer.Allowed(ctx, scope, permission)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	return nil
}
