package commerce

import (
	"github.com/shopspring/decimal"
)

// DefaultSessionID is used when a caller does not supply a session identifier
const DefaultSessionID = "default"

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

// CartItem is a single product+quantity line within a cart
type CartItem struct {
	// ID is the line-item identifier used for update/remove
	ID string
	// ProductID is the provider-native product identifier
	ProductID string
	// Name is the display name of the product
	Name string
	// Quantity is the ordered quantity, at least 1
	Quantity int
	// UnitPrice is the per-unit price in major currency units
	UnitPrice decimal.Decimal
	// TotalPrice is the provider-computed line total
	TotalPrice decimal.Decimal
	// ImageURL is the product image, empty when none
	ImageURL string
}

// Cart is the provider-agnostic cart shape. TotalPrice is provider-computed
// and is not re-validated against the item totals.
type Cart struct {
	CartID     string
	Items      []CartItem
	TotalPrice decimal.Decimal
	TotalItems int
	Currency   string
}

// FindItemByProductID returns the line item referencing the given product,
// or nil when the cart does not contain it.
func (c *Cart) FindItemByProductID(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartResult is the outcome of an add-to-cart operation. Providers with a
// soft-failure contract (Shopware) report upstream rejections through
// Success=false and Error rather than an error return, so callers must
// branch on Success explicitly.
type CartResult struct {
	Success   bool
	Error     string
	Cart      Cart
	AddedItem *CartItem
}

// ---------------------------------------------------------------------------
// AddToCart request
// ---------------------------------------------------------------------------

// CartAction discriminates what an AddToCart call should actually do.
// Only the Salesforce adapter honors set/remove re-routing; the other
// providers expose update/remove as separate operations.
type CartAction string

const (
	// CartActionAdd adds a product to the cart (default)
	CartActionAdd CartAction = "add"
	// CartActionSet updates a line item quantity
	CartActionSet CartAction = "set"
	// CartActionRemove removes a line item
	CartActionRemove CartAction = "remove"
)

// IsValid returns true if the action is one of the known values
func (a CartAction) IsValid() bool {
	switch a {
	case CartActionAdd, CartActionSet, CartActionRemove:
		return true
	default:
		return false
	}
}

// String returns the string representation of CartAction
func (a CartAction) String() string {
	return string(a)
}

// AddToCartRequest is the canonical add-to-cart payload after boundary
// normalization. Account scoping (Salesforce effectiveAccountId) is
// deliberately absent: it is injected server-side from configuration and
// never taken from caller input.
type AddToCartRequest struct {
	// ProductID is required when Action is add (or empty)
	ProductID string
	// CartItemID is required when Action is set or remove
	CartItemID string
	// Quantity defaults to 1 when not positive
	Quantity int
	// SessionID scopes the cart; defaults to DefaultSessionID
	SessionID string
	// Action defaults to CartActionAdd
	Action CartAction
}

// Normalize applies the documented defaults in place
func (r *AddToCartRequest) Normalize() {
	if r.Quantity < 1 {
		r.Quantity = 1
	}
	if r.SessionID == "" {
		r.SessionID = DefaultSessionID
	}
	if r.Action == "" {
		r.Action = CartActionAdd
	}
}

// Validate checks the request against its action's requirements
func (r *AddToCartRequest) Validate() error {
	if !r.Action.IsValid() && r.Action != "" {
		return ErrInvalidCartAction
	}
	switch r.Action {
	case CartActionSet, CartActionRemove:
		if r.CartItemID == "" {
			return ErrMissingCartItemID
		}
	default:
		if r.ProductID == "" {
			return ErrMissingProductID
		}
	}
	return nil
}
