package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// maxResponseSize limits upstream response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response
)

// htmlTagPattern strips markup when the product description is HTML
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// CartDelegate forwards cart operations to the assistant service. Shopify
// deployments keep cart state there rather than in the commerce backend.
type CartDelegate interface {
	Request(ctx context.Context, method, endpoint string, body any) ([]byte, error)
}

// ShopifyAdapter implements commerce.CommerceProvider for the Shopify
// REST Admin API. Product reads go to Shopify; cart operations are
// delegated to the assistant service.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
	cart       CartDelegate
	logger     *zap.Logger
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig, cart CartDelegate, logger *zap.Logger) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		cart:   cart,
		logger: logger.With(zap.String("provider", "shopify")),
	}, nil
}

// Code returns the provider code this adapter handles
func (a *ShopifyAdapter) Code() commerce.ProviderCode {
	return commerce.ProviderShopify
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetAllProducts returns one page of the catalog. The cursor is the numeric
// id of the previous page's last product (Shopify since_id pagination).
func (a *ShopifyAdapter) GetAllProducts(ctx context.Context, limit int, cursor string) (commerce.ProductPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		if _, err := strconv.ParseInt(cursor, 10, 64); err != nil {
			return commerce.ProductPage{}, fmt.Errorf("shopify: invalid cursor %q: %w", cursor, err)
		}
		query.Set("since_id", cursor)
	}

	body, status, err := a.doRequest(ctx, "/products.json", query)
	if err != nil {
		return commerce.ProductPage{}, err
	}
	if status >= 400 {
		return commerce.ProductPage{}, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopifyProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return commerce.ProductPage{}, fmt.Errorf("shopify: failed to parse response: %w", err)
	}

	page := commerce.ProductPage{
		Products: make([]commerce.Product, 0, len(resp.Products)),
	}
	for _, p := range resp.Products {
		page.Products = append(page.Products, a.normalizeProduct(&p))
	}
	if len(resp.Products) > 0 {
		page.NextCursor = strconv.FormatInt(resp.Products[len(resp.Products)-1].ID, 10)
	}

	return page, nil
}

// GetProductDetails returns the product or (nil, nil) when Shopify reports 404
func (a *ShopifyAdapter) GetProductDetails(ctx context.Context, productID string) (*commerce.Product, error) {
	body, status, err := a.doRequest(ctx, fmt.Sprintf("/products/%s.json", url.PathEscape(productID)), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopifyProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse response: %w", err)
	}
	if resp.Product == nil {
		return nil, nil
	}

	product := a.normalizeProduct(resp.Product)
	return &product, nil
}

// SearchProducts runs a title query. Errors propagate to the caller.
func (a *ShopifyAdapter) SearchProducts(ctx context.Context, query string, limit int) ([]commerce.Product, error) {
	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(limit))

	body, status, err := a.doRequest(ctx, "/products.json", params)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopifyProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse response: %w", err)
	}

	products := make([]commerce.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, a.normalizeProduct(&p))
	}

	a.logger.Info("products searched", zap.String("query", query), zap.Int("count", len(products)))
	return products, nil
}

// GetProductByHandle looks a product up by its URL handle
func (a *ShopifyAdapter) GetProductByHandle(ctx context.Context, handle string) (*commerce.Product, error) {
	params := url.Values{}
	params.Set("handle", handle)
	params.Set("limit", "1")

	body, status, err := a.doRequest(ctx, "/products.json", params)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp ShopifyProductListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse response: %w", err)
	}
	if len(resp.Products) == 0 {
		return nil, nil
	}

	product := a.normalizeProduct(&resp.Products[0])
	return &product, nil
}

// ---------------------------------------------------------------------------
// Cart Operations (delegated to the assistant service)
// ---------------------------------------------------------------------------

// AddToCart forwards the cart mutation to the assistant cart API
func (a *ShopifyAdapter) AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	payload := map[string]any{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"action":     req.Action.String(),
		"session_id": req.SessionID,
	}
	if req.CartItemID != "" {
		payload["cartItemId"] = req.CartItemID
	}

	body, err := a.cart.Request(ctx, http.MethodPost, "/assistant/cart", payload)
	if err != nil {
		return nil, err
	}

	var resp AssistantCartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse cart response: %w", err)
	}

	result := &commerce.CartResult{
		Success: resp.Success,
		Error:   resp.Error,
		Cart:    a.normalizeAssistantCart(resp.Cart),
	}
	if item := result.Cart.FindItemByProductID(req.ProductID); item != nil {
		result.AddedItem = item
	}
	return result, nil
}

// GetCart fetches the session's cart from the assistant service
func (a *ShopifyAdapter) GetCart(ctx context.Context, sessionID string) (*commerce.Cart, error) {
	endpoint := "/assistant/cart?session_id=" + url.QueryEscape(sessionID)
	body, err := a.cart.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp AssistantCartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse cart response: %w", err)
	}

	cart := a.normalizeAssistantCart(resp.Cart)
	return &cart, nil
}

// UpdateCartItem sets a line item quantity through the assistant cart API
func (a *ShopifyAdapter) UpdateCartItem(ctx context.Context, lineItemID string, quantity int, sessionID string) (*commerce.Cart, error) {
	payload := map[string]any{
		"cartItemId": lineItemID,
		"quantity":   quantity,
		"action":     "set",
		"session_id": sessionID,
	}

	body, err := a.cart.Request(ctx, http.MethodPost, "/assistant/cart", payload)
	if err != nil {
		return nil, err
	}

	var resp AssistantCartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse cart response: %w", err)
	}

	cart := a.normalizeAssistantCart(resp.Cart)
	return &cart, nil
}

// RemoveFromCart deletes a line item through the assistant cart API
func (a *ShopifyAdapter) RemoveFromCart(ctx context.Context, lineItemID string, sessionID string) (*commerce.Cart, error) {
	payload := map[string]any{
		"cartItemId": lineItemID,
		"action":     "remove",
		"session_id": sessionID,
	}

	body, err := a.cart.Request(ctx, http.MethodPost, "/assistant/cart", payload)
	if err != nil {
		return nil, err
	}

	var resp AssistantCartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse cart response: %w", err)
	}

	cart := a.normalizeAssistantCart(resp.Cart)
	return &cart, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs a GET against the Admin API and returns body and status.
// Transport failures map to ErrProviderUnavailable; HTTP error statuses are
// left to callers since 404 means not-found rather than failure.
func (a *ShopifyAdapter) doRequest(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	reqURL := a.config.APIBaseURL() + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("shopify: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		a.logger.Warn("upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
	}

	return body, resp.StatusCode, nil
}

// normalizeProduct maps a Shopify product to the provider-agnostic shape.
// The first variant supplies sku, price, and stock.
func (a *ShopifyAdapter) normalizeProduct(p *ShopifyProduct) commerce.Product {
	var firstVariant ShopifyVariant
	if len(p.Variants) > 0 {
		firstVariant = p.Variants[0]
	}

	sku := firstVariant.SKU
	if sku == "" {
		sku = p.Handle
	}

	price := decimal.Zero
	if firstVariant.Price != "" {
		if parsed, err := decimal.NewFromString(firstVariant.Price); err == nil {
			price = parsed
		}
	}

	category := p.ProductType
	if category == "" {
		category = "General"
	}

	vendor := p.Vendor
	if vendor == "" {
		vendor = a.config.DefaultVendor
	}

	var tags []string
	if p.Tags != "" {
		tags = strings.Split(p.Tags, ", ")
	}

	var imageURL string
	if len(p.Images) > 0 {
		imageURL = p.Images[0].Src
	}

	stockStatus := commerce.StockStatusOutOfStock
	if firstVariant.InventoryQuantity > 0 {
		stockStatus = commerce.StockStatusInStock
	}

	description := strings.TrimSpace(htmlTagPattern.ReplaceAllString(p.BodyHTML, ""))

	specs := map[string]any{
		"weight":             firstVariant.Weight,
		"weight_unit":        firstVariant.WeightUnit,
		"inventory_quantity": firstVariant.InventoryQuantity,
		"barcode":            firstVariant.Barcode,
		"specifications":     description,
		"features":           p.Tags,
	}
	for _, opt := range p.Options {
		if opt.Name == "Material" {
			specs["material"] = strings.Join(opt.Values, ", ")
		}
	}

	return commerce.Product{
		SKU:         sku,
		Handle:      p.Handle,
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Description: description,
		Price:       price,
		Currency:    a.config.DefaultCurrency,
		Category:    category,
		Tags:        tags,
		ImageURL:    imageURL,
		Vendor:      vendor,
		ProductURL:  a.config.ProductURL(p.Handle),
		StockStatus: stockStatus,
		Specs:       specs,
	}
}

// normalizeAssistantCart maps the assistant cart shape to the domain cart
func (a *ShopifyAdapter) normalizeAssistantCart(c *AssistantCart) commerce.Cart {
	cart := commerce.Cart{
		Items:      make([]commerce.CartItem, 0),
		TotalPrice: decimal.Zero,
		Currency:   a.config.DefaultCurrency,
	}
	if c == nil {
		return cart
	}

	cart.CartID = c.ID
	cart.TotalPrice = decimal.NewFromFloat(c.Total)
	cart.TotalItems = c.ItemCount
	if c.Currency != "" {
		cart.Currency = c.Currency
	}
	for _, item := range c.Items {
		cart.Items = append(cart.Items, commerce.CartItem{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  decimal.NewFromFloat(item.UnitPrice),
			TotalPrice: decimal.NewFromFloat(item.TotalPrice),
			ImageURL:   item.ImageURL,
		})
	}
	return cart
}

// Ensure ShopifyAdapter implements CommerceProvider interface
var _ commerce.CommerceProvider = (*ShopifyAdapter)(nil)
