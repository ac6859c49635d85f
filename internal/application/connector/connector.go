package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
	"github.com/easymart/chat-backend/internal/infrastructure/config"
	"github.com/easymart/chat-backend/internal/infrastructure/ecommerce"
)

// Service fronts the active commerce backend. Exactly one provider is
// selected at startup; every storefront operation flows through here so
// handlers never know which backend they are talking to.
type Service struct {
	provider commerce.CommerceProvider
	logger   *zap.Logger
}

// NewService creates a new connector service over the given provider
func NewService(provider commerce.CommerceProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger.With(zap.String("provider", provider.Code().String())),
	}
}

// BuildProvider constructs the commerce adapter named by the configuration.
// The Shopify adapter delegates cart operations to the assistant service,
// which is why the cart delegate is a required input.
func BuildProvider(cfg *config.Config, cart ecommerce.CartDelegate, logger *zap.Logger) (commerce.CommerceProvider, error) {
	code, err := commerce.ParseProviderCode(cfg.Commerce.Provider)
	if err != nil {
		return nil, err
	}

	switch code {
	case commerce.ProviderShopify:
		return ecommerce.NewShopifyAdapter(&ecommerce.ShopifyConfig{
			StoreDomain:    cfg.Shopify.StoreDomain,
			AccessToken:    cfg.Shopify.AccessToken,
			APIVersion:     cfg.Shopify.APIVersion,
			TimeoutSeconds: cfg.Shopify.TimeoutSeconds,
		}, cart, logger)
	case commerce.ProviderSalesforce:
		return ecommerce.NewSalesforceAdapter(&ecommerce.SalesforceConfig{
			BaseURL:            cfg.Salesforce.BaseURL,
			TokenURL:           cfg.Salesforce.TokenURL,
			ClientID:           cfg.Salesforce.ClientID,
			ClientSecret:       cfg.Salesforce.ClientSecret,
			Username:           cfg.Salesforce.Username,
			Password:           cfg.Salesforce.Password,
			SecurityToken:      cfg.Salesforce.SecurityToken,
			JWTClientID:        cfg.Salesforce.JWTClientID,
			JWTUsername:        cfg.Salesforce.JWTUsername,
			JWTPrivateKey:      cfg.Salesforce.JWTPrivateKey,
			EffectiveAccountID: cfg.Salesforce.EffectiveAccountID,
			APIVersion:         cfg.Salesforce.APIVersion,
			TimeoutSeconds:     cfg.Salesforce.TimeoutSeconds,
		}, logger)
	case commerce.ProviderShopware:
		return ecommerce.NewShopwareAdapter(&ecommerce.ShopwareConfig{
			StoreAPIURL:     cfg.Shopware.StoreAPIURL,
			SalesChannelKey: cfg.Shopware.SalesChannelKey,
			AdminAPIURL:     cfg.Shopware.AdminAPIURL,
			AdminAPIToken:   cfg.Shopware.AdminAPIToken,
			TimeoutSeconds:  cfg.Shopware.TimeoutSeconds,
		}, logger)
	}

	return nil, fmt.Errorf("%w: %s", commerce.ErrUnknownProvider, cfg.Commerce.Provider)
}

// ActiveProvider returns the code of the provider behind this service
func (s *Service) ActiveProvider() commerce.ProviderCode {
	return s.provider.Code()
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetAllProducts returns one page of the catalog
func (s *Service) GetAllProducts(ctx context.Context, limit int, cursor string) (commerce.ProductPage, error) {
	return s.provider.GetAllProducts(ctx, limit, cursor)
}

// GetProductDetails returns a single product, nil when it does not exist
func (s *Service) GetProductDetails(ctx context.Context, productID string) (*commerce.Product, error) {
	if productID == "" {
		return nil, commerce.ErrMissingProductID
	}
	return s.provider.GetProductDetails(ctx, productID)
}

// SearchProducts runs a free-text product search
func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]commerce.Product, error) {
	return s.provider.SearchProducts(ctx, query, limit)
}

// GetProductByHandle resolves a product by its storefront handle
func (s *Service) GetProductByHandle(ctx context.Context, handle string) (*commerce.Product, error) {
	if handle == "" {
		return nil, commerce.ErrMissingProductID
	}
	return s.provider.GetProductByHandle(ctx, handle)
}

// ---------------------------------------------------------------------------
// Cart Operations
// ---------------------------------------------------------------------------

// AddToCart validates and dispatches a cart mutation. The request's action
// decides whether this is an add, a quantity set, or a removal.
func (s *Service) AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("cart mutation",
		zap.String("action", req.Action.String()),
		zap.String("product_id", req.ProductID),
		zap.String("session_id", req.SessionID),
	)
	return s.provider.AddToCart(ctx, req)
}

// GetCart returns the session's cart
func (s *Service) GetCart(ctx context.Context, sessionID string) (*commerce.Cart, error) {
	if sessionID == "" {
		sessionID = commerce.DefaultSessionID
	}
	return s.provider.GetCart(ctx, sessionID)
}

// UpdateCartItem sets the quantity of a cart line
func (s *Service) UpdateCartItem(ctx context.Context, lineItemID string, quantity int, sessionID string) (*commerce.Cart, error) {
	if lineItemID == "" {
		return nil, commerce.ErrMissingCartItemID
	}
	if sessionID == "" {
		sessionID = commerce.DefaultSessionID
	}
	return s.provider.UpdateCartItem(ctx, lineItemID, quantity, sessionID)
}

// RemoveFromCart removes a cart line
func (s *Service) RemoveFromCart(ctx context.Context, lineItemID, sessionID string) (*commerce.Cart, error) {
	if lineItemID == "" {
		return nil, commerce.ErrMissingCartItemID
	}
	if sessionID == "" {
		sessionID = commerce.DefaultSessionID
	}
	return s.provider.RemoveFromCart(ctx, lineItemID, sessionID)
}
