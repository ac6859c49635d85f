package ecommerce

// Shopware 6 Store API response types.
// https://shopware.stoplight.io/docs/store-api

// ShopwareProduct is a product entity from the Store or Admin API
type ShopwareProduct struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	ProductNumber   string                   `json:"productNumber"`
	Translated      *ShopwareTranslated      `json:"translated"`
	CalculatedPrice *ShopwareCalculatedPrice `json:"calculatedPrice"`
	Price           []ShopwareGrossPrice     `json:"price"`
	Cover           *ShopwareCover           `json:"cover"`
	SeoUrls         []ShopwareSeoURL         `json:"seoUrls"`
	Available       *bool                    `json:"available"`
	Stock           int                      `json:"stock"`
	Manufacturer    *ShopwareManufacturer    `json:"manufacturer"`
	Categories      []ShopwareCategory       `json:"categories"`
}

// ShopwareTranslated carries the sales-channel language fields
type ShopwareTranslated struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ShopwareCalculatedPrice is the channel-calculated price
type ShopwareCalculatedPrice struct {
	UnitPrice float64           `json:"unitPrice"`
	Currency  *ShopwareCurrency `json:"currency"`
}

// ShopwareCurrency identifies a currency
type ShopwareCurrency struct {
	IsoCode string `json:"isoCode"`
}

// ShopwareGrossPrice is a raw price entry
type ShopwareGrossPrice struct {
	Gross float64 `json:"gross"`
}

// ShopwareCover is the cover image association
type ShopwareCover struct {
	Media *ShopwareMedia `json:"media"`
	URL   string         `json:"url"`
}

// ShopwareMedia is a media entity
type ShopwareMedia struct {
	URL string `json:"url"`
}

// ShopwareSeoURL is a seo url association entry
type ShopwareSeoURL struct {
	SeoPathInfo string `json:"seoPathInfo"`
}

// ShopwareManufacturer is the manufacturer association
type ShopwareManufacturer struct {
	Name string `json:"name"`
}

// ShopwareCategory is a category association entry
type ShopwareCategory struct {
	Name string `json:"name"`
}

// ShopwareProductListResponse is the envelope of product listing and search
type ShopwareProductListResponse struct {
	Elements []ShopwareProduct `json:"elements"`
}

// ShopwareProductDetailResponse is the envelope of POST /product/{id}.
// Some Shopware versions wrap the entity, others return it directly, so
// the product field is optional.
type ShopwareProductDetailResponse struct {
	Product *ShopwareProduct `json:"product"`
	ShopwareProduct
}

// ShopwareAdminProductListResponse is the envelope of the Admin API search
type ShopwareAdminProductListResponse struct {
	Data []ShopwareProduct `json:"data"`
}

// ---------------------------------------------------------------------------
// Cart types
// ---------------------------------------------------------------------------

// ShopwareCart is the checkout cart entity
type ShopwareCart struct {
	Token     string             `json:"token"`
	Price     *ShopwareCartPrice `json:"price"`
	LineItems []ShopwareLineItem `json:"lineItems"`
}

// ShopwareCartPrice carries the cart totals
type ShopwareCartPrice struct {
	TotalPrice float64 `json:"totalPrice"`
	CurrencyID string  `json:"currencyId"`
}

// ShopwareLineItem is a cart line item
type ShopwareLineItem struct {
	ID           string                 `json:"id"`
	ReferencedID string                 `json:"referencedId"`
	Label        string                 `json:"label"`
	Quantity     int                    `json:"quantity"`
	Price        *ShopwareLineItemPrice `json:"price"`
	Cover        *ShopwareMedia         `json:"cover"`
}

// ShopwareLineItemPrice carries per-line pricing
type ShopwareLineItemPrice struct {
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// ShopwareErrorResponse is the structured error body
type ShopwareErrorResponse struct {
	Errors []ShopwareError `json:"errors"`
}

// ShopwareError is a single error entry
type ShopwareError struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// FirstDetail returns the first error detail, or the fallback when absent
func (r *ShopwareErrorResponse) FirstDetail(fallback string) string {
	if len(r.Errors) > 0 && r.Errors[0].Detail != "" {
		return r.Errors[0].Detail
	}
	return fallback
}
