package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Commerce   CommerceConfig
	Shopify    ShopifyConfig
	Salesforce SalesforceConfig
	Shopware   ShopwareConfig
	Assistant  AssistantConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// CommerceConfig selects the active provider and bounds the catalog export
type CommerceConfig struct {
	// Provider is one of shopify, salesforce, shopware (case-insensitive)
	Provider string
	// ExportPageLimit is the page size used by the catalog export loop
	ExportPageLimit int
	// ExportMaxPages caps the export loop; reaching it yields a partial export
	ExportMaxPages int
}

// ShopifyConfig holds Shopify REST Admin API settings
type ShopifyConfig struct {
	StoreDomain    string // store domain without scheme, e.g. shop.myshopify.com
	AccessToken    string
	APIVersion     string
	TimeoutSeconds int
}

// SalesforceConfig holds Salesforce Apex REST and OAuth settings.
// JWT-bearer credentials take precedence over the password grant; the
// JWT client id and username fall back to the base ClientID/Username.
type SalesforceConfig struct {
	BaseURL            string
	TokenURL           string
	ClientID           string
	ClientSecret       string
	Username           string
	Password           string
	SecurityToken      string
	JWTClientID        string
	JWTUsername        string
	JWTPrivateKey      string // PEM; escaped newlines are normalized
	EffectiveAccountID string // server-controlled, never taken from callers
	APIVersion         string
	TimeoutSeconds     int
}

// ShopwareConfig holds Shopware 6 Store API and optional Admin API settings
type ShopwareConfig struct {
	StoreAPIURL     string
	SalesChannelKey string
	AdminAPIURL     string // optional; enables full-data catalog listing
	AdminAPIToken   string
	TimeoutSeconds  int
}

// AssistantConfig holds the conversational assistant service settings
type AssistantConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EASYMART_ prefix (e.g., EASYMART_SALESFORCE_CLIENT_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("EASYMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Commerce: CommerceConfig{
			Provider:        v.GetString("commerce.provider"),
			ExportPageLimit: v.GetInt("commerce.export_page_limit"),
			ExportMaxPages:  v.GetInt("commerce.export_max_pages"),
		},
		Shopify: ShopifyConfig{
			StoreDomain:    v.GetString("shopify.store_domain"),
			AccessToken:    v.GetString("shopify.access_token"),
			APIVersion:     v.GetString("shopify.api_version"),
			TimeoutSeconds: v.GetInt("shopify.timeout_seconds"),
		},
		Salesforce: SalesforceConfig{
			BaseURL:            v.GetString("salesforce.base_url"),
			TokenURL:           v.GetString("salesforce.token_url"),
			ClientID:           v.GetString("salesforce.client_id"),
			ClientSecret:       v.GetString("salesforce.client_secret"),
			Username:           v.GetString("salesforce.username"),
			Password:           v.GetString("salesforce.password"),
			SecurityToken:      v.GetString("salesforce.security_token"),
			JWTClientID:        v.GetString("salesforce.jwt_client_id"),
			JWTUsername:        v.GetString("salesforce.jwt_username"),
			JWTPrivateKey:      v.GetString("salesforce.jwt_private_key"),
			EffectiveAccountID: v.GetString("salesforce.effective_account_id"),
			APIVersion:         v.GetString("salesforce.api_version"),
			TimeoutSeconds:     v.GetInt("salesforce.timeout_seconds"),
		},
		Shopware: ShopwareConfig{
			StoreAPIURL:     v.GetString("shopware.store_api_url"),
			SalesChannelKey: v.GetString("shopware.sales_channel_key"),
			AdminAPIURL:     v.GetString("shopware.admin_api_url"),
			AdminAPIToken:   v.GetString("shopware.admin_api_token"),
			TimeoutSeconds:  v.GetInt("shopware.timeout_seconds"),
		},
		Assistant: AssistantConfig{
			BaseURL:        v.GetString("assistant.base_url"),
			TimeoutSeconds: v.GetInt("assistant.timeout_seconds"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "easymart-chat-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Must cover the slowest upstream (assistant, 60s)
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB; chat and cart payloads are small
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Commerce.Provider == "" {
		cfg.Commerce.Provider = "shopify"
	}
	if cfg.Commerce.ExportPageLimit == 0 {
		cfg.Commerce.ExportPageLimit = 250
	}
	if cfg.Commerce.ExportMaxPages == 0 {
		cfg.Commerce.ExportMaxPages = 10
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-01"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Salesforce.APIVersion == "" {
		cfg.Salesforce.APIVersion = "v57.0"
	}
	if cfg.Salesforce.TimeoutSeconds == 0 {
		cfg.Salesforce.TimeoutSeconds = 10
	}
	if cfg.Salesforce.JWTClientID == "" {
		cfg.Salesforce.JWTClientID = cfg.Salesforce.ClientID
	}
	if cfg.Salesforce.JWTUsername == "" {
		cfg.Salesforce.JWTUsername = cfg.Salesforce.Username
	}
	if cfg.Shopware.TimeoutSeconds == 0 {
		cfg.Shopware.TimeoutSeconds = 30
	}
	if cfg.Assistant.BaseURL == "" {
		cfg.Assistant.BaseURL = "http://localhost:8000"
	}
	if cfg.Assistant.TimeoutSeconds == 0 {
		cfg.Assistant.TimeoutSeconds = 60
	}

	// Store domain is configured without a scheme; tolerate one being pasted in
	cfg.Shopify.StoreDomain = strings.TrimPrefix(
		strings.TrimPrefix(cfg.Shopify.StoreDomain, "https://"), "http://")
	cfg.Salesforce.BaseURL = strings.TrimSuffix(cfg.Salesforce.BaseURL, "/")
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.Commerce.Provider))
	switch provider {
	case "", "shopify", "salesforce", "shopware":
	default:
		return fmt.Errorf("commerce.provider must be one of shopify, salesforce, shopware; got %q", c.Commerce.Provider)
	}

	if c.Commerce.ExportPageLimit < 1 {
		return fmt.Errorf("commerce.export_page_limit must be positive")
	}
	if c.Commerce.ExportMaxPages < 1 {
		return fmt.Errorf("commerce.export_max_pages must be positive")
	}

	// Production-specific validations: the active provider must be able to
	// authenticate, so fail at startup rather than on the first request.
	if c.App.Env == "production" {
		switch provider {
		case "", "shopify":
			if c.Shopify.StoreDomain == "" || c.Shopify.AccessToken == "" {
				return fmt.Errorf("shopify.store_domain and shopify.access_token are required in production")
			}
		case "salesforce":
			if c.Salesforce.BaseURL == "" || c.Salesforce.TokenURL == "" {
				return fmt.Errorf("salesforce.base_url and salesforce.token_url are required in production")
			}
			hasJWT := c.Salesforce.JWTPrivateKey != "" && c.Salesforce.JWTClientID != ""
			hasPassword := c.Salesforce.Username != "" && c.Salesforce.Password != ""
			if !hasJWT && !hasPassword {
				return fmt.Errorf("salesforce requires JWT credentials or username/password in production")
			}
		case "shopware":
			if c.Shopware.StoreAPIURL == "" || c.Shopware.SalesChannelKey == "" {
				return fmt.Errorf("shopware.store_api_url and shopware.sales_channel_key are required in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
