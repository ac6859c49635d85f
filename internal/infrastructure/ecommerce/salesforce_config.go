package ecommerce

import (
	"errors"
	"strings"
)

// SalesforceConfig holds configuration for the Salesforce Apex REST API
type SalesforceConfig struct {
	// BaseURL is the org instance URL, e.g. https://org.my.salesforce.com
	BaseURL string
	// TokenURL is the OAuth token endpoint
	TokenURL string
	// ClientID and ClientSecret are the connected app credentials
	ClientID     string
	ClientSecret string
	// Username, Password, SecurityToken drive the password grant fallback
	Username      string
	Password      string
	SecurityToken string
	// JWTClientID, JWTUsername, JWTPrivateKey drive the preferred JWT
	// bearer flow; client id and username fall back to the base values
	JWTClientID   string
	JWTUsername   string
	JWTPrivateKey string
	// EffectiveAccountID scopes cart calls to a buyer account. It is
	// attached server-side only and never taken from caller input.
	EffectiveAccountID string
	// APIVersion is the REST data API version, e.g. v57.0
	APIVersion string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for Salesforce configuration
var (
	ErrSalesforceConfigMissingBaseURL  = errors.New("salesforce: base URL is required")
	ErrSalesforceConfigMissingTokenURL = errors.New("salesforce: token URL is required")
	ErrSalesforceConfigNoAuthMethod    = errors.New("salesforce: no supported auth configured (set JWT credentials or username/password)")
)

// NewSalesforceConfig creates a new Salesforce configuration with defaults
func NewSalesforceConfig(baseURL, tokenURL string) *SalesforceConfig {
	return &SalesforceConfig{
		BaseURL:        strings.TrimSuffix(baseURL, "/"),
		TokenURL:       tokenURL,
		APIVersion:     "v57.0",
		TimeoutSeconds: 10,
	}
}

// Validate validates the Salesforce configuration
func (c *SalesforceConfig) Validate() error {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.BaseURL == "" {
		return ErrSalesforceConfigMissingBaseURL
	}
	if c.TokenURL == "" {
		return ErrSalesforceConfigMissingTokenURL
	}
	if c.JWTClientID == "" {
		c.JWTClientID = c.ClientID
	}
	if c.JWTUsername == "" {
		c.JWTUsername = c.Username
	}
	if c.APIVersion == "" {
		c.APIVersion = "v57.0"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// HasJWTCredentials reports whether the JWT bearer flow can be used
func (c *SalesforceConfig) HasJWTCredentials() bool {
	return c.JWTPrivateKey != "" && c.JWTClientID != "" && c.JWTUsername != ""
}

// HasPasswordCredentials reports whether the password grant fallback can be used
func (c *SalesforceConfig) HasPasswordCredentials() bool {
	return c.Username != "" && c.Password != "" && c.ClientID != "" && c.ClientSecret != ""
}

// PrivateKeyPEM returns the private key with escaped newlines normalized.
// Env files often store multi-line PEM blocks with literal \n sequences.
func (c *SalesforceConfig) PrivateKeyPEM() string {
	if strings.Contains(c.JWTPrivateKey, `\n`) {
		return strings.ReplaceAll(c.JWTPrivateKey, `\n`, "\n")
	}
	return c.JWTPrivateKey
}
