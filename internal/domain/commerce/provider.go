package commerce

import (
	"context"
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrProviderNotConfigured is returned when the selected provider is
	// missing required credentials
	ErrProviderNotConfigured = errors.New("commerce: provider not configured")
	// ErrProviderUnavailable wraps transport-level failures reaching a provider
	ErrProviderUnavailable = errors.New("commerce: provider temporarily unavailable")
	// ErrProviderRequestFailed wraps upstream HTTP error statuses
	ErrProviderRequestFailed = errors.New("commerce: provider request failed")
	// ErrProviderInvalidResponse is returned when a provider body cannot be decoded
	ErrProviderInvalidResponse = errors.New("commerce: invalid provider response")
	// ErrProviderAuthFailed is returned when token acquisition fails
	ErrProviderAuthFailed = errors.New("commerce: provider authentication failed")

	// ErrMissingProductID is returned by AddToCart when the product id is absent
	ErrMissingProductID = errors.New("commerce: product id is required")
	// ErrMissingCartItemID is returned when update/remove lacks a line item id
	ErrMissingCartItemID = errors.New("commerce: cart item id is required")
	// ErrInvalidCartAction is returned for an unknown cart action
	ErrInvalidCartAction = errors.New("commerce: invalid cart action")
	// ErrUnknownProvider is returned when a provider code cannot be resolved
	ErrUnknownProvider = errors.New("commerce: unknown provider")
)

// ---------------------------------------------------------------------------
// ProviderCode
// ---------------------------------------------------------------------------

// ProviderCode identifies one of the supported commerce backends
type ProviderCode string

const (
	// ProviderShopify is the Shopify REST Admin API backend
	ProviderShopify ProviderCode = "shopify"
	// ProviderSalesforce is the Salesforce Apex REST backend
	ProviderSalesforce ProviderCode = "salesforce"
	// ProviderShopware is the Shopware 6 Store API backend
	ProviderShopware ProviderCode = "shopware"
)

// IsValid returns true if the provider code is one of the supported backends
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderShopify, ProviderSalesforce, ProviderShopware:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// ParseProviderCode resolves a configured provider string. Matching is
// case-insensitive; an empty value falls back to Shopify.
func ParseProviderCode(s string) (ProviderCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shopify":
		return ProviderShopify, nil
	case "salesforce":
		return ProviderSalesforce, nil
	case "shopware":
		return ProviderShopware, nil
	default:
		return "", ErrUnknownProvider
	}
}

// ---------------------------------------------------------------------------
// CommerceProvider Port Interface
// ---------------------------------------------------------------------------

// CommerceProvider defines the port interface for commerce backends.
// It is defined in the domain layer; concrete implementations (Shopify,
// Salesforce, Shopware) live in the infrastructure layer. Exactly one
// implementation is selected at startup from configuration.
//
// Error contracts differ per operation and per provider, matching the
// upstream APIs rather than a unified policy:
//   - GetProductDetails and GetProductByHandle return (nil, nil) when the
//     provider reports not-found.
//   - SearchProducts degrades to an empty slice on upstream failure for
//     Shopware and propagates the error for Shopify and Salesforce.
//   - AddToCart never returns an error for upstream rejections on Shopware;
//     it reports them through CartResult.Success=false.
type CommerceProvider interface {
	// Code returns the provider code this adapter handles
	Code() ProviderCode

	// GetAllProducts returns one page of the catalog. The cursor is the
	// NextCursor of the previous page, or empty for the first page.
	GetAllProducts(ctx context.Context, limit int, cursor string) (ProductPage, error)

	// GetProductDetails returns the product or (nil, nil) when not found
	GetProductDetails(ctx context.Context, productID string) (*Product, error)

	// SearchProducts runs a free-text query
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)

	// GetProductByHandle looks a product up by its provider-specific handle
	GetProductByHandle(ctx context.Context, handle string) (*Product, error)

	// AddToCart adds a product to the session's cart. The request must be
	// normalized and validated by the caller.
	AddToCart(ctx context.Context, req AddToCartRequest) (*CartResult, error)

	// GetCart returns the session's cart, creating one where the provider
	// requires it
	GetCart(ctx context.Context, sessionID string) (*Cart, error)

	// UpdateCartItem sets a line item's quantity
	UpdateCartItem(ctx context.Context, lineItemID string, quantity int, sessionID string) (*Cart, error)

	// RemoveFromCart deletes a line item
	RemoveFromCart(ctx context.Context, lineItemID string, sessionID string) (*Cart, error)
}
