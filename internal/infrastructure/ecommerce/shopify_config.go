package ecommerce

import (
	"errors"
	"fmt"
	"strings"
)

// ShopifyConfig holds configuration for the Shopify REST Admin API
type ShopifyConfig struct {
	// StoreDomain is the shop domain without scheme, e.g. easymart.myshopify.com
	StoreDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version, e.g. 2024-01
	APIVersion string
	// BaseURL overrides the synthesized Admin API base URL when set
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// DefaultCurrency is reported on normalized products; the REST product
	// payload does not carry a currency code
	DefaultCurrency string
	// DefaultVendor is used when a product has no vendor set
	DefaultVendor string
}

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain = errors.New("shopify: store domain is required")
	ErrShopifyConfigMissingToken  = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(storeDomain, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		StoreDomain:     storeDomain,
		AccessToken:     accessToken,
		APIVersion:      "2024-01",
		TimeoutSeconds:  30,
		DefaultCurrency: "AUD",
		DefaultVendor:   "EasyMart",
	}
}

// Validate validates the Shopify configuration
func (c *ShopifyConfig) Validate() error {
	c.StoreDomain = strings.TrimPrefix(strings.TrimPrefix(c.StoreDomain, "https://"), "http://")
	if c.StoreDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-01"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = "AUD"
	}
	if c.DefaultVendor == "" {
		c.DefaultVendor = "EasyMart"
	}
	return nil
}

// APIBaseURL returns the versioned Admin API base URL
func (c *ShopifyConfig) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s/admin/api/%s", c.StoreDomain, c.APIVersion)
}

// ProductURL returns the storefront URL for a product handle
func (c *ShopifyConfig) ProductURL(handle string) string {
	return fmt.Sprintf("https://%s/products/%s", c.StoreDomain, handle)
}
