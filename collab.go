package brigade

import (
	"context"

	"github.com/xraph/brigade/types"
)

// Scope carries the tenant and acting operator for one engine call.
// Every operation takes an explicit Scope; the engine never reads identity
// from context values.
type Scope struct {
	TenantID string
	ActorID  string
}

// Validate checks that the scope identifies a tenant.
func (s Scope) Validate() error {
	if s.TenantID == "" {
		return ValidationError{Field: "tenant_id", Message: "is required"}
	}
	return nil
}

// ItemInfo is the menu snapshot for one sellable item, as resolved by the
// Catalog collaborator at the moment a line is added.
type ItemInfo struct {
	ItemID    string
	Name      string
	UnitPrice types.Money
	Available bool
}

// Catalog resolves menu items. Brigade does not own the menu; the host
// application supplies prices and routing zones through this interface.
type Catalog interface {
	ResolveItem(ctx context.Context, tenantID, siteID, itemID string) (*ItemInfo, error)
}

// CatalogFunc adapts a plain function to a Catalog.
type CatalogFunc func(ctx context.Context, tenantID, siteID, itemID string) (*ItemInfo, error)

// ResolveItem implements Catalog.
func (f CatalogFunc) ResolveItem(ctx context.Context, tenantID, siteID, itemID string) (*ItemInfo, error) {
	return f(ctx, tenantID, siteID, itemID)
}

// Permission keys checked through the Authorizer collaborator.
const (
	PermVoidAfterSubtotal = "order.void_after_subtotal"
	PermApplyDiscount     = "order.apply_discount"
	PermVoidPayment       = "payment.void"
	PermReprintDocument   = "printing.reprint"
)

// Authorizer decides elevated-permission checks. A nil Authorizer denies
// everything that requires elevation.
type Authorizer interface {
	Allowed(ctx context.Context, scope Scope, permission string) (bool, error)
}

// AuthorizerFunc adapts a plain function to an Authorizer.
type AuthorizerFunc func(ctx context.Context, scope Scope, permission string) (bool, error)

// Allowed implements Authorizer.
func (f AuthorizerFunc) Allowed(ctx context.Context, scope Scope, permission string) (bool, error) {
	return f(ctx, scope, permission)
}
