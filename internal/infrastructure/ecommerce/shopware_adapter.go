package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// shopwareContextTokenHeader carries the cart context between calls
	shopwareContextTokenHeader = "sw-context-token"
	// shopwareAccessKeyHeader authenticates against the sales channel
	shopwareAccessKeyHeader = "sw-access-key"
)

// storeProductAssociations is the association set requested with product reads
var storeProductAssociations = map[string]any{
	"cover": map[string]any{
		"associations": map[string]any{"media": map[string]any{}},
	},
	"seoUrls": map[string]any{},
}

// ShopwareAdapter implements commerce.CommerceProvider for the Shopware 6
// Store API. Cart state lives in Shopware, addressed by sw-context-token;
// the adapter maps widget session ids to tokens in a process-local store.
type ShopwareAdapter struct {
	config     *ShopwareConfig
	httpClient *http.Client
	sessions   *shopwareSessionStore
	logger     *zap.Logger
}

// NewShopwareAdapter creates a new Shopware adapter with the given configuration
func NewShopwareAdapter(config *ShopwareConfig, logger *zap.Logger) (*ShopwareAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ShopwareAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		sessions: newShopwareSessionStore(),
		logger:   logger.With(zap.String("provider", "shopware")),
	}, nil
}

// Code returns the provider code this adapter handles
func (a *ShopwareAdapter) Code() commerce.ProviderCode {
	return commerce.ProviderShopware
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetAllProducts returns one page of the catalog. The cursor is a page
// number; page 1 when empty. With Admin API credentials configured the
// listing uses the Admin search endpoint for full product data.
func (a *ShopwareAdapter) GetAllProducts(ctx context.Context, limit int, cursor string) (commerce.ProductPage, error) {
	page := 1
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 1 {
			return commerce.ProductPage{}, fmt.Errorf("shopware: invalid cursor %q", cursor)
		}
		page = parsed
	}

	var products []ShopwareProduct
	var err error
	if a.config.HasAdminAPI() {
		products, err = a.listProductsAdmin(ctx, limit, page)
	} else {
		products, err = a.listProductsStore(ctx, limit, page)
	}
	if err != nil {
		return commerce.ProductPage{}, err
	}

	result := commerce.ProductPage{
		Products: make([]commerce.Product, 0, len(products)),
	}
	for i := range products {
		result.Products = append(result.Products, a.normalizeProduct(&products[i]))
	}
	if len(products) > 0 {
		result.NextCursor = strconv.Itoa(page + 1)
	}

	return result, nil
}

func (a *ShopwareAdapter) listProductsStore(ctx context.Context, limit, page int) ([]ShopwareProduct, error) {
	body, status, _, err := a.doStoreRequest(ctx, http.MethodPost, "/product", map[string]any{
		"limit":        limit,
		"page":         page,
		"associations": storeProductAssociations,
	}, "")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopwareProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse response: %w", err)
	}
	return resp.Elements, nil
}

func (a *ShopwareAdapter) listProductsAdmin(ctx context.Context, limit, page int) ([]ShopwareProduct, error) {
	payload := map[string]any{
		"limit": limit,
		"page":  page,
		"associations": map[string]any{
			"cover":        map[string]any{},
			"media":        map[string]any{},
			"categories":   map[string]any{},
			"properties":   map[string]any{},
			"manufacturer": map[string]any{},
		},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("shopware: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.AdminAPIURL+"/search/product", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("shopware: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.AdminAPIToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopware: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		a.logger.Error("admin API error", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, resp.StatusCode)
	}

	var listResp ShopwareAdminProductListResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse response: %w", err)
	}
	return listResp.Data, nil
}

// GetProductDetails fetches one product, (nil, nil) on 404
func (a *ShopwareAdapter) GetProductDetails(ctx context.Context, productID string) (*commerce.Product, error) {
	body, status, _, err := a.doStoreRequest(ctx, http.MethodPost, "/product/"+url.PathEscape(productID), map[string]any{
		"associations": storeProductAssociations,
	}, "")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopwareProductDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse response: %w", err)
	}

	entity := resp.Product
	if entity == nil {
		entity = &resp.ShopwareProduct
	}
	if entity.ID == "" {
		return nil, nil
	}

	product := a.normalizeProduct(entity)
	return &product, nil
}

// SearchProducts runs a free-text query. Upstream failures degrade to an
// empty slice so the chat flow keeps working when search is down.
func (a *ShopwareAdapter) SearchProducts(ctx context.Context, query string, limit int) ([]commerce.Product, error) {
	associations := map[string]any{
		"cover": map[string]any{
			"associations": map[string]any{"media": map[string]any{}},
		},
		"seoUrls":      map[string]any{},
		"categories":   map[string]any{},
		"manufacturer": map[string]any{},
	}

	body, status, _, err := a.doStoreRequest(ctx, http.MethodPost, "/search", map[string]any{
		"search":       query,
		"limit":        limit,
		"associations": associations,
	}, "")
	if err != nil {
		a.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return []commerce.Product{}, nil
	}
	if status >= 400 {
		a.logger.Error("search failed", zap.String("query", query), zap.Int("status", status))
		return []commerce.Product{}, nil
	}

	var resp ShopwareProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.logger.Error("search response unreadable", zap.String("query", query), zap.Error(err))
		return []commerce.Product{}, nil
	}

	products := make([]commerce.Product, 0, len(resp.Elements))
	for i := range resp.Elements {
		products = append(products, a.normalizeProduct(&resp.Elements[i]))
	}

	a.logger.Info("products searched", zap.String("query", query), zap.Int("count", len(products)))
	return products, nil
}

// GetProductByHandle filters on productNumber
func (a *ShopwareAdapter) GetProductByHandle(ctx context.Context, handle string) (*commerce.Product, error) {
	body, status, _, err := a.doStoreRequest(ctx, http.MethodPost, "/product", map[string]any{
		"limit": 1,
		"filter": []map[string]any{
			{"type": "equals", "field": "productNumber", "value": handle},
		},
		"associations": storeProductAssociations,
	}, "")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopwareProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse response: %w", err)
	}
	if len(resp.Elements) == 0 {
		return nil, nil
	}

	product := a.normalizeProduct(&resp.Elements[0])
	return &product, nil
}

// ---------------------------------------------------------------------------
// Cart Operations
// ---------------------------------------------------------------------------

// AddToCart adds a product to the session's cart. Failures do not surface
// as errors: the result carries Success=false and the upstream detail, so
// the widget can show the rejection (out of stock, unknown product) inline.
func (a *ShopwareAdapter) AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	result, err := a.addToCart(ctx, req)
	if err != nil {
		a.logger.Error("failed to add to cart",
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return &commerce.CartResult{
			Success: false,
			Error:   err.Error(),
		}, nil
	}
	return result, nil
}

func (a *ShopwareAdapter) addToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	// Ensure a cart and context token exist before touching line items
	if _, err := a.GetCart(ctx, req.SessionID); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"items": []map[string]any{
			{
				"id":           req.ProductID,
				"referencedId": req.ProductID,
				"type":         "product",
				"quantity":     req.Quantity,
			},
		},
	}

	body, status, header, err := a.doStoreRequest(ctx, http.MethodPost, "/checkout/cart/line-item", payload, req.SessionID)
	if err != nil {
		return nil, err
	}
	a.handleContextToken(header, req.SessionID)
	if status >= 400 {
		return nil, fmt.Errorf("%s", a.errorDetail(body, "failed to add product to cart"))
	}

	var swCart ShopwareCart
	if err := json.Unmarshal(body, &swCart); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse cart response: %w", err)
	}

	cart := a.normalizeCart(&swCart)
	a.logger.Info("product added to cart",
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
	)

	result := &commerce.CartResult{Success: true, Cart: cart}
	if item := cart.FindItemByProductID(req.ProductID); item != nil {
		result.AddedItem = item
	}
	return result, nil
}

// GetCart fetches the session's cart, creating one when Shopware reports
// that no cart exists yet
func (a *ShopwareAdapter) GetCart(ctx context.Context, sessionID string) (*commerce.Cart, error) {
	body, status, header, err := a.doStoreRequest(ctx, http.MethodGet, "/checkout/cart", nil, sessionID)
	if err != nil {
		return nil, err
	}
	a.handleContextToken(header, sessionID)

	if status == http.StatusNotFound {
		return a.createCart(ctx, sessionID)
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var swCart ShopwareCart
	if err := json.Unmarshal(body, &swCart); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse cart response: %w", err)
	}

	cart := a.normalizeCart(&swCart)
	return &cart, nil
}

// createCart creates a fresh cart and records its context token
func (a *ShopwareAdapter) createCart(ctx context.Context, sessionID string) (*commerce.Cart, error) {
	body, status, header, err := a.doStoreRequest(ctx, http.MethodPost, "/checkout/cart", map[string]any{}, sessionID)
	if err != nil {
		return nil, err
	}
	a.handleContextToken(header, sessionID)
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var swCart ShopwareCart
	if err := json.Unmarshal(body, &swCart); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse cart response: %w", err)
	}

	cart := a.normalizeCart(&swCart)
	return &cart, nil
}

// UpdateCartItem sets a line item quantity
func (a *ShopwareAdapter) UpdateCartItem(ctx context.Context, lineItemID string, quantity int, sessionID string) (*commerce.Cart, error) {
	payload := map[string]any{
		"items": []map[string]any{
			{"id": lineItemID, "quantity": quantity},
		},
	}

	body, status, header, err := a.doStoreRequest(ctx, http.MethodPatch, "/checkout/cart/line-item", payload, sessionID)
	if err != nil {
		return nil, err
	}
	a.handleContextToken(header, sessionID)
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var swCart ShopwareCart
	if err := json.Unmarshal(body, &swCart); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse cart response: %w", err)
	}

	cart := a.normalizeCart(&swCart)
	return &cart, nil
}

// RemoveFromCart deletes a line item
func (a *ShopwareAdapter) RemoveFromCart(ctx context.Context, lineItemID string, sessionID string) (*commerce.Cart, error) {
	path := "/checkout/cart/line-item?ids[]=" + url.QueryEscape(lineItemID)
	body, status, header, err := a.doStoreRequest(ctx, http.MethodDelete, path, nil, sessionID)
	if err != nil {
		return nil, err
	}
	a.handleContextToken(header, sessionID)
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var swCart ShopwareCart
	if err := json.Unmarshal(body, &swCart); err != nil {
		return nil, fmt.Errorf("shopware: failed to parse cart response: %w", err)
	}

	cart := a.normalizeCart(&swCart)
	return &cart, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doStoreRequest performs a Store API request. The session's context token,
// when known, rides along as sw-context-token; callers must feed response
// headers back through handleContextToken.
func (a *ShopwareAdapter) doStoreRequest(ctx context.Context, method, path string, payload any, sessionID string) ([]byte, int, http.Header, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("shopware: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.StoreAPIURL+path, bodyReader)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("shopware: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(shopwareAccessKeyHeader, a.config.SalesChannelKey)
	if sessionID != "" {
		if token := a.sessions.Get(sessionID); token != "" {
			req.Header.Set(shopwareContextTokenHeader, token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("shopware: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		a.logger.Error("upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("method", method),
			zap.String("path", path),
		)
	}

	return body, resp.StatusCode, resp.Header, nil
}

// handleContextToken records the sw-context-token issued by a response
func (a *ShopwareAdapter) handleContextToken(header http.Header, sessionID string) {
	if header == nil || sessionID == "" {
		return
	}
	if token := header.Get(shopwareContextTokenHeader); token != "" {
		a.sessions.Set(sessionID, token)
	}
}

// errorDetail extracts the first structured error detail from a body
func (a *ShopwareAdapter) errorDetail(body []byte, fallback string) string {
	var errResp ShopwareErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fallback
	}
	return errResp.FirstDetail(fallback)
}

// normalizeProduct maps a Shopware product to the provider-agnostic shape.
// Translated fields win over the raw entity fields.
func (a *ShopwareAdapter) normalizeProduct(p *ShopwareProduct) commerce.Product {
	name := p.Name
	description := p.Description
	if p.Translated != nil {
		if p.Translated.Name != "" {
			name = p.Translated.Name
		}
		if p.Translated.Description != "" {
			description = p.Translated.Description
		}
	}
	if name == "" {
		name = "Product"
	}

	price := decimal.Zero
	currency := a.config.DefaultCurrency
	if p.CalculatedPrice != nil {
		price = decimal.NewFromFloat(p.CalculatedPrice.UnitPrice)
		if p.CalculatedPrice.Currency != nil && p.CalculatedPrice.Currency.IsoCode != "" {
			currency = p.CalculatedPrice.Currency.IsoCode
		}
	} else if len(p.Price) > 0 {
		price = decimal.NewFromFloat(p.Price[0].Gross)
	}

	var imageURL string
	if p.Cover != nil {
		if p.Cover.Media != nil && p.Cover.Media.URL != "" {
			imageURL = p.Cover.Media.URL
		} else {
			imageURL = p.Cover.URL
		}
	}

	productURL := "/detail/" + p.ID
	if len(p.SeoUrls) > 0 && p.SeoUrls[0].SeoPathInfo != "" {
		productURL = "/" + p.SeoUrls[0].SeoPathInfo
	}

	stockStatus := commerce.StockStatusUnknown
	switch {
	case p.Available != nil && !*p.Available:
		stockStatus = commerce.StockStatusOutOfStock
	case p.Available != nil:
		stockStatus = commerce.StockStatusInStock
	case p.Stock > 0:
		stockStatus = commerce.StockStatusInStock
	}

	sku := p.ProductNumber
	if sku == "" {
		sku = p.ID
	}

	category := "General"
	if len(p.Categories) > 0 && p.Categories[0].Name != "" {
		category = p.Categories[0].Name
	}

	var vendor string
	if p.Manufacturer != nil {
		vendor = p.Manufacturer.Name
	}

	return commerce.Product{
		SKU:         sku,
		Handle:      p.ProductNumber,
		ID:          p.ID,
		Title:       name,
		Description: description,
		Price:       price,
		Currency:    currency,
		Category:    category,
		Tags:        []string{},
		ImageURL:    imageURL,
		Vendor:      vendor,
		ProductURL:  productURL,
		StockStatus: stockStatus,
		Specs: map[string]any{
			"stock":          p.Stock,
			"product_number": p.ProductNumber,
		},
	}
}

// normalizeCart maps a Shopware cart to the domain cart. TotalItems counts
// lines, not quantities, matching the widget contract.
func (a *ShopwareAdapter) normalizeCart(c *ShopwareCart) commerce.Cart {
	cart := commerce.Cart{
		CartID:     c.Token,
		Items:      make([]commerce.CartItem, 0, len(c.LineItems)),
		TotalPrice: decimal.Zero,
		Currency:   a.config.DefaultCurrency,
	}
	if c.Price != nil {
		cart.TotalPrice = decimal.NewFromFloat(c.Price.TotalPrice)
		if c.Price.CurrencyID != "" {
			cart.Currency = c.Price.CurrencyID
		}
	}

	for _, item := range c.LineItems {
		cartItem := commerce.CartItem{
			ID:        item.ID,
			ProductID: item.ReferencedID,
			Name:      item.Label,
			Quantity:  item.Quantity,
		}
		if cartItem.Name == "" {
			cartItem.Name = "Product"
		}
		if cartItem.Quantity == 0 {
			cartItem.Quantity = 1
		}
		if item.Price != nil {
			cartItem.UnitPrice = decimal.NewFromFloat(item.Price.UnitPrice)
			cartItem.TotalPrice = decimal.NewFromFloat(item.Price.TotalPrice)
		}
		if item.Cover != nil {
			cartItem.ImageURL = item.Cover.URL
		}
		cart.Items = append(cart.Items, cartItem)
	}
	cart.TotalItems = len(cart.Items)

	return cart
}

// Ensure ShopwareAdapter implements CommerceProvider interface
var _ commerce.CommerceProvider = (*ShopwareAdapter)(nil)
