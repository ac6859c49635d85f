package commerce

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// StockStatus
// ---------------------------------------------------------------------------

// StockStatus represents product availability as reported by a provider
type StockStatus string

const (
	// StockStatusInStock indicates the product can be purchased
	StockStatusInStock StockStatus = "in_stock"
	// StockStatusOutOfStock indicates the product is sold out
	StockStatusOutOfStock StockStatus = "out_of_stock"
	// StockStatusUnknown indicates the provider did not report availability
	StockStatusUnknown StockStatus = "unknown"
)

// IsValid returns true if the stock status is valid
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusOutOfStock, StockStatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// Product is the provider-agnostic product shape produced by every adapter.
// Instances live for a single request/response cycle and are never persisted.
type Product struct {
	// SKU is the stock keeping unit (falls back to the handle when absent)
	SKU string
	// Handle is the provider-specific stable identifier (URL slug or
	// product number, depending on the provider)
	Handle string
	// ID is the provider-native product identifier
	ID string
	// Title is the display name
	Title string
	// Description is plain text (HTML stripped by the adapter)
	Description string
	// Price is the unit price in major currency units, never negative
	Price decimal.Decimal
	// Currency is the ISO currency code
	Currency string
	// Category is the product type/category name
	Category string
	// Tags contains free-form labels
	Tags []string
	// ImageURL is the primary image, empty when none
	ImageURL string
	// Vendor is the brand or manufacturer name
	Vendor string
	// ProductURL is the storefront URL for the product
	ProductURL string
	// StockStatus is the normalized availability
	StockStatus StockStatus
	// Specs carries provider-specific extras (weight, barcode, raw variants)
	Specs map[string]any
}

// ProductPage is one page of a provider listing. NextCursor is the opaque
// continuation value the caller passes back to fetch the following page;
// its concrete meaning (last numeric id, page number) is provider-specific
// and must not be interpreted by callers. Empty means the provider cannot
// advance the cursor.
type ProductPage struct {
	Products   []Product
	NextCursor string
}
