package ecommerce

import (
	"errors"
	"strings"
)

// ShopwareConfig holds configuration for the Shopware 6 Store API and the
// optional Admin API used for full-data catalog listings
type ShopwareConfig struct {
	// StoreAPIURL is the Store API base, e.g. https://shop.example.com/store-api
	StoreAPIURL string
	// SalesChannelKey is the sw-access-key of the sales channel
	SalesChannelKey string
	// AdminAPIURL enables Admin API product listings when set together
	// with AdminAPIToken
	AdminAPIURL string
	// AdminAPIToken is the Admin API bearer token
	AdminAPIToken string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// DefaultCurrency is used when a cart or price carries no currency
	DefaultCurrency string
}

// Errors for Shopware configuration
var (
	ErrShopwareConfigMissingURL = errors.New("shopware: store API URL is required")
	ErrShopwareConfigMissingKey = errors.New("shopware: sales channel key is required")
)

// NewShopwareConfig creates a new Shopware configuration with defaults
func NewShopwareConfig(storeAPIURL, salesChannelKey string) *ShopwareConfig {
	return &ShopwareConfig{
		StoreAPIURL:     strings.TrimSuffix(storeAPIURL, "/"),
		SalesChannelKey: salesChannelKey,
		TimeoutSeconds:  30,
		DefaultCurrency: "EUR",
	}
}

// Validate validates the Shopware configuration
func (c *ShopwareConfig) Validate() error {
	c.StoreAPIURL = strings.TrimSuffix(c.StoreAPIURL, "/")
	c.AdminAPIURL = strings.TrimSuffix(c.AdminAPIURL, "/")
	if c.StoreAPIURL == "" {
		return ErrShopwareConfigMissingURL
	}
	if c.SalesChannelKey == "" {
		return ErrShopwareConfigMissingKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = "EUR"
	}
	return nil
}

// HasAdminAPI reports whether Admin API catalog listing is configured
func (c *ShopwareConfig) HasAdminAPI() bool {
	return c.AdminAPIURL != "" && c.AdminAPIToken != ""
}
