package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// salesforceSearchPath is the Apex REST product search endpoint
	salesforceSearchPath = "/services/apexrest/commerce/search"
	// salesforceCartPath is the Apex REST cart endpoint
	salesforceCartPath = "/services/apexrest/CartApi"
	// salesforceMaxPageSize caps the search page size
	salesforceMaxPageSize = 250
	// salesforceListingQuery approximates a full listing; the Apex sample
	// exposes search only, no export endpoint
	salesforceListingQuery = "Alpine"
)

// SalesforceAdapter implements commerce.CommerceProvider for Salesforce
// B2B Commerce via Apex REST. Records come back with heavily aliased field
// names, so normalization works off generic maps rather than fixed structs.
type SalesforceAdapter struct {
	config     *SalesforceConfig
	httpClient *http.Client
	tokens     *salesforceTokenSource
	logger     *zap.Logger
}

// NewSalesforceAdapter creates a new Salesforce adapter with the given configuration
func NewSalesforceAdapter(config *SalesforceConfig, logger *zap.Logger) (*SalesforceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", "salesforce"))

	httpClient := &http.Client{
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
	}

	return &SalesforceAdapter{
		config:     config,
		httpClient: httpClient,
		tokens:     newSalesforceTokenSource(config, httpClient, logger),
		logger:     logger,
	}, nil
}

// Code returns the provider code this adapter handles
func (a *SalesforceAdapter) Code() commerce.ProviderCode {
	return commerce.ProviderSalesforce
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetAllProducts approximates a catalog listing with a fixed broad search
// query. There is no continuation: NextCursor is always empty.
func (a *SalesforceAdapter) GetAllProducts(ctx context.Context, limit int, _ string) (commerce.ProductPage, error) {
	products, err := a.SearchProducts(ctx, salesforceListingQuery, limit)
	if err != nil {
		return commerce.ProductPage{}, err
	}
	return commerce.ProductPage{Products: products}, nil
}

// SearchProducts queries the Apex search endpoint. Errors propagate.
func (a *SalesforceAdapter) SearchProducts(ctx context.Context, query string, limit int) ([]commerce.Product, error) {
	pageSize := limit
	if pageSize <= 0 || pageSize > salesforceMaxPageSize {
		pageSize = salesforceMaxPageSize
	}

	body, status, err := a.doRequest(ctx, http.MethodPost, salesforceSearchPath, map[string]any{
		"query":    query,
		"pageSize": pageSize,
	})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var resp struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("salesforce: failed to parse response: %w", err)
	}

	products := make([]commerce.Product, 0, len(resp.Products))
	for _, record := range resp.Products {
		products = append(products, a.normalizeSearchRecord(record))
	}

	a.logger.Info("products searched", zap.String("query", query), zap.Int("count", len(products)))
	return products, nil
}

// GetProductDetails fetches the Product2 record, (nil, nil) on 404
func (a *SalesforceAdapter) GetProductDetails(ctx context.Context, productID string) (*commerce.Product, error) {
	path := fmt.Sprintf("/services/data/%s/sobjects/Product2/%s", a.config.APIVersion, url.PathEscape(productID))
	body, status, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	var record map[string]any
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("salesforce: failed to parse response: %w", err)
	}

	product := a.normalizeProduct2Record(record)
	return &product, nil
}

// GetProductByHandle has no native handle support; the handle string is
// used as a search term and the first hit wins.
func (a *SalesforceAdapter) GetProductByHandle(ctx context.Context, handle string) (*commerce.Product, error) {
	products, err := a.SearchProducts(ctx, handle, 1)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// ---------------------------------------------------------------------------
// Cart Operations
// ---------------------------------------------------------------------------

// AddToCart posts to the Apex cart API. The set and remove actions re-route
// to UpdateCartItem and RemoveFromCart, matching the connector contract.
// EffectiveAccountID comes exclusively from configuration.
func (a *SalesforceAdapter) AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	switch req.Action {
	case commerce.CartActionSet:
		cart, err := a.UpdateCartItem(ctx, req.CartItemID, req.Quantity, req.SessionID)
		if err != nil {
			return nil, err
		}
		return &commerce.CartResult{Success: true, Cart: *cart}, nil
	case commerce.CartActionRemove:
		cart, err := a.RemoveFromCart(ctx, req.CartItemID, req.SessionID)
		if err != nil {
			return nil, err
		}
		return &commerce.CartResult{Success: true, Cart: *cart}, nil
	}

	payload := map[string]any{
		"productId": req.ProductID,
		"quantity":  req.Quantity,
	}
	if a.config.EffectiveAccountID != "" {
		payload["effectiveAccountId"] = a.config.EffectiveAccountID
	}

	body, status, err := a.doRequest(ctx, http.MethodPost, salesforceCartPath, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}

	cart, err := a.parseCart(body)
	if err != nil {
		return nil, err
	}

	result := &commerce.CartResult{Success: true, Cart: *cart}
	if item := cart.FindItemByProductID(req.ProductID); item != nil {
		result.AddedItem = item
	}
	return result, nil
}

// GetCart fetches the account cart. Salesforce carts are account-scoped,
// so the session id is not part of the request.
func (a *SalesforceAdapter) GetCart(ctx context.Context, _ string) (*commerce.Cart, error) {
	body, status, err := a.doRequest(ctx, http.MethodGet, salesforceCartPath, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}
	return a.parseCart(body)
}

// UpdateCartItem patches a cart item quantity
func (a *SalesforceAdapter) UpdateCartItem(ctx context.Context, lineItemID string, quantity int, _ string) (*commerce.Cart, error) {
	payload := map[string]any{
		"cartItemId": lineItemID,
		"quantity":   quantity,
	}

	body, status, err := a.doRequest(ctx, http.MethodPatch, salesforceCartPath, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}
	return a.parseCart(body)
}

// RemoveFromCart deletes a cart item
func (a *SalesforceAdapter) RemoveFromCart(ctx context.Context, lineItemID string, _ string) (*commerce.Cart, error) {
	payload := map[string]any{
		"cartItemId": lineItemID,
	}

	body, status, err := a.doRequest(ctx, http.MethodDelete, salesforceCartPath, payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, status)
	}
	return a.parseCart(body)
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated request against the org. The access
// token is attached as a Bearer header and never appears in logs.
func (a *SalesforceAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("salesforce: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("salesforce: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("salesforce: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		a.logger.Error("upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("method", method),
			zap.String("path", path),
		)
	}

	return body, resp.StatusCode, nil
}

// normalizeSearchRecord maps an Apex search record to the provider-agnostic
// shape. The Apex layer returns admin-style records with inconsistent
// casing, so every field is resolved through an alias chain. Image URLs are
// withheld: the storefront must not reach into org resources directly.
func (a *SalesforceAdapter) normalizeSearchRecord(record map[string]any) commerce.Product {
	id := sfString(record, "productId", "id", "Id", "Product2Id", "product2Id")
	name := sfString(record, "productName", "name", "Name", "Product2Name", "product2Name")
	currency := sfString(record, "currencyIsoCode", "currency", "CurrencyIsoCode")

	return commerce.Product{
		SKU:         id,
		Handle:      id,
		ID:          id,
		Title:       name,
		Price:       sfDecimal(record, "unitPrice", "price"),
		Currency:    currency,
		Category:    "General",
		Tags:        []string{},
		Vendor:      "EasyMart",
		StockStatus: commerce.StockStatusUnknown,
		Specs:       map[string]any{},
	}
}

// normalizeProduct2Record maps a Product2 sobject to the provider-agnostic
// shape. Product2 carries no pricing, so Price stays zero.
func (a *SalesforceAdapter) normalizeProduct2Record(record map[string]any) commerce.Product {
	id := sfString(record, "Id", "id")
	sku := sfString(record, "ProductCode", "productCode")
	if sku == "" {
		sku = id
	}

	return commerce.Product{
		SKU:         sku,
		Handle:      id,
		ID:          id,
		Title:       sfString(record, "Name", "name"),
		Description: sfString(record, "Description", "description"),
		Currency:    sfString(record, "CurrencyIsoCode", "currencyIsoCode"),
		Category:    sfString(record, "Family", "family"),
		Tags:        []string{},
		Vendor:      "EasyMart",
		StockStatus: commerce.StockStatusUnknown,
		Specs:       map[string]any{},
	}
}

// parseCart normalizes an Apex cart API response
func (a *SalesforceAdapter) parseCart(body []byte) (*commerce.Cart, error) {
	var record map[string]any
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("salesforce: failed to parse cart response: %w", err)
	}

	cart := &commerce.Cart{
		CartID:     sfString(record, "cartId", "id", "Id"),
		Items:      make([]commerce.CartItem, 0),
		TotalPrice: sfDecimal(record, "totalPrice", "grandTotalAmount", "total"),
		Currency:   sfString(record, "currency", "currencyIsoCode", "CurrencyIsoCode"),
	}

	items, _ := record["items"].([]any)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, commerce.CartItem{
			ID:         sfString(item, "cartItemId", "id", "Id"),
			ProductID:  sfString(item, "productId", "Product2Id", "product2Id"),
			Name:       sfString(item, "name", "productName", "Name"),
			Quantity:   int(sfNumber(item, "quantity", "Quantity")),
			UnitPrice:  sfDecimal(item, "unitPrice", "price"),
			TotalPrice: sfDecimal(item, "totalPrice", "TotalPrice"),
		})
	}

	if n := int(sfNumber(record, "totalItems")); n > 0 {
		cart.TotalItems = n
	} else {
		cart.TotalItems = len(cart.Items)
	}

	return cart, nil
}

// sfString returns the first non-empty string value among the given keys
func sfString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// sfNumber returns the first numeric value among the given keys. String
// values that parse as numbers count; the Apex layer is not consistent.
func sfNumber(record map[string]any, keys ...string) float64 {
	for _, key := range keys {
		switch v := record[key].(type) {
		case float64:
			return v
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				f, _ := d.Float64()
				return f
			}
		}
	}
	return 0
}

// sfDecimal returns the first numeric value among the given keys as a decimal
func sfDecimal(record map[string]any, keys ...string) decimal.Decimal {
	for _, key := range keys {
		switch v := record[key].(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}

// Ensure SalesforceAdapter implements CommerceProvider interface
var _ commerce.CommerceProvider = (*SalesforceAdapter)(nil)
