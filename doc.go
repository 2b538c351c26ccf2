// Package brigade provides a multi-tenant order fulfillment core for
// point-of-sale applications.
//
// Brigade is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - An order ledger with line, discount, and consumption tracking
//   - Idempotent payment recording with automatic order close
//   - Kitchen print routing with deduplication, redirects, and reprints
//   - Cash drawer sessions with an append-only movement ledger
//   - Optimistic concurrency on every mutable entity
//   - A synchronous in-process event bus linking the pieces together
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/brigade"
//	    "github.com/xraph/brigade/store/postgres"
//	)
//
//	// Initialize store with a grove database handle
//	store := postgres.New(db)
//
//	// Create the engine with your menu and permission collaborators
//	engine := brigade.New(store,
//	    brigade.WithCatalog(myCatalog),
//	    brigade.WithAuthorizer(myAuthorizer),
//	    brigade.WithPrintDeliverer(myDeliverer),
//	)
//
//	// Start the engine (runs store migrations)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Every operation takes an explicit Scope naming the tenant and acting
// operator; the engine never reads identity from ambient context:
//
//	scope := brigade.Scope{TenantID: "tenant-1", ActorID: "waiter-42"}
//
// Orders start open, accumulate lines and discounts, and are confirmed to
// fire the kitchen:
//
//	o, err := engine.CreateOrder(ctx, scope, brigade.CreateOrderRequest{
//	    SiteID:   "site-1",
//	    Type:     order.TypeDineIn,
//	    TableID:  "12",
//	    Currency: "usd",
//	})
//	line, err := engine.AddLine(ctx, scope, brigade.AddLineRequest{
//	    OrderID: o.ID, ItemID: "espresso", Quantity: 2,
//	})
//	o, err = engine.ConfirmOrder(ctx, scope, o.ID)
//
// Confirmation synchronously creates the consumption records and the print
// jobs; a print routing failure aborts the confirmation. Payments are
// idempotent per key and close the order once the total is covered:
//
//	p, err := engine.ProcessPayment(ctx, scope, brigade.ProcessPaymentRequest{
//	    OrderID:        o.ID,
//	    Amount:         brigade.USD(2250),
//	    Method:         payment.MethodCash,
//	    IdempotencyKey: "till-7-000123",
//	})
package brigade
