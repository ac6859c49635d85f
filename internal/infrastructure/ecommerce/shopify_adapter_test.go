package ecommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopifyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopifyConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &ShopifyConfig{StoreDomain: "shop.example.com", AccessToken: "shpat_test"},
			wantErr: nil,
		},
		{
			name:    "missing domain",
			config:  &ShopifyConfig{AccessToken: "shpat_test"},
			wantErr: ErrShopifyConfigMissingDomain,
		},
		{
			name:    "missing token",
			config:  &ShopifyConfig{StoreDomain: "shop.example.com"},
			wantErr: ErrShopifyConfigMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.config.TimeoutSeconds > 0)
				assert.NotEmpty(t, tt.config.APIVersion)
			}
		})
	}
}

func TestShopifyConfig_StripsScheme(t *testing.T) {
	config := &ShopifyConfig{StoreDomain: "https://shop.example.com", AccessToken: "shpat_test"}
	require.NoError(t, config.Validate())
	assert.Equal(t, "shop.example.com", config.StoreDomain)
	assert.Equal(t, "https://shop.example.com/admin/api/2024-01", config.APIBaseURL())
	assert.Equal(t, "https://shop.example.com/products/garden-shed", config.ProductURL("garden-shed"))
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

// fakeCartDelegate records cart delegation calls and replays canned responses
type fakeCartDelegate struct {
	method   string
	endpoint string
	body     any
	response []byte
	err      error
}

func (f *fakeCartDelegate) Request(_ context.Context, method, endpoint string, body any) ([]byte, error) {
	f.method = method
	f.endpoint = endpoint
	f.body = body
	return f.response, f.err
}

func newTestShopifyAdapter(t *testing.T, serverURL string, cart CartDelegate) *ShopifyAdapter {
	t.Helper()
	config := NewShopifyConfig("shop.example.com", "shpat_test")
	config.BaseURL = serverURL
	adapter, err := NewShopifyAdapter(config, cart, nil)
	require.NoError(t, err)
	return adapter
}

func TestNewShopifyAdapter_InvalidConfig(t *testing.T) {
	adapter, err := NewShopifyAdapter(&ShopifyConfig{}, nil, nil)
	assert.Error(t, err)
	assert.Nil(t, adapter)
}

func TestShopifyAdapter_GetAllProducts(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/products.json", r.URL.Path)
		gotQuery = r.URL.RawQuery

		json.NewEncoder(w).Encode(ShopifyProductListResponse{
			Products: []ShopifyProduct{
				{
					ID:          101,
					Title:       "Garden Shed",
					BodyHTML:    "<p>Sturdy <b>steel</b> shed</p>",
					Handle:      "garden-shed",
					ProductType: "Outdoor",
					Vendor:      "",
					Tags:        "steel, outdoor, shed",
					Variants: []ShopifyVariant{
						{ID: 1, SKU: "SHED-01", Price: "299.95", InventoryQuantity: 4},
					},
					Images: []ShopifyImage{{Src: "https://cdn.example.com/shed.jpg"}},
				},
				{
					ID:     102,
					Title:  "Bench",
					Handle: "bench",
					Variants: []ShopifyVariant{
						{ID: 2, Price: "49.00", InventoryQuantity: 0},
					},
				},
			},
		})
	}))
	defer server.Close()

	adapter := newTestShopifyAdapter(t, server.URL, nil)

	page, err := adapter.GetAllProducts(context.Background(), 250, "55")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "limit=250")
	assert.Contains(t, gotQuery, "since_id=55")
	require.Len(t, page.Products, 2)
	assert.Equal(t, "102", page.NextCursor)

	shed := page.Products[0]
	assert.Equal(t, "SHED-01", shed.SKU)
	assert.Equal(t, "101", shed.ID)
	assert.Equal(t, "Sturdy steel shed", shed.Description)
	assert.True(t, shed.Price.Equal(decimal.RequireFromString("299.95")))
	assert.Equal(t, "AUD", shed.Currency)
	assert.Equal(t, "Outdoor", shed.Category)
	assert.Equal(t, []string{"steel", "outdoor", "shed"}, shed.Tags)
	assert.Equal(t, "https://cdn.example.com/shed.jpg", shed.ImageURL)
	assert.Equal(t, "EasyMart", shed.Vendor)
	assert.Equal(t, "https://shop.example.com/products/garden-shed", shed.ProductURL)
	assert.Equal(t, commerce.StockStatusInStock, shed.StockStatus)
	assert.Equal(t, 4, shed.Specs["inventory_quantity"])

	bench := page.Products[1]
	// No variant sku falls back to the handle
	assert.Equal(t, "bench", bench.SKU)
	assert.Equal(t, commerce.StockStatusOutOfStock, bench.StockStatus)
}

func TestShopifyAdapter_GetAllProducts_InvalidCursor(t *testing.T) {
	adapter := newTestShopifyAdapter(t, "http://127.0.0.1:1", nil)
	_, err := adapter.GetAllProducts(context.Background(), 10, "not-a-number")
	assert.Error(t, err)
}

func TestShopifyAdapter_GetProductDetails(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products/101.json", r.URL.Path)
			json.NewEncoder(w).Encode(ShopifyProductResponse{
				Product: &ShopifyProduct{ID: 101, Title: "Garden Shed", Handle: "garden-shed"},
			})
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL, nil)
		product, err := adapter.GetProductDetails(context.Background(), "101")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Garden Shed", product.Title)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL, nil)
		product, err := adapter.GetProductDetails(context.Background(), "999")
		assert.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL, nil)
		_, err := adapter.GetProductDetails(context.Background(), "101")
		assert.ErrorIs(t, err, commerce.ErrProviderRequestFailed)
	})
}

func TestShopifyAdapter_SearchProducts(t *testing.T) {
	t.Run("title query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "shed", r.URL.Query().Get("title"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(ShopifyProductListResponse{
				Products: []ShopifyProduct{{ID: 101, Title: "Garden Shed", Handle: "garden-shed"}},
			})
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL, nil)
		products, err := adapter.SearchProducts(context.Background(), "shed", 5)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("errors propagate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL, nil)
		_, err := adapter.SearchProducts(context.Background(), "shed", 5)
		assert.ErrorIs(t, err, commerce.ErrProviderRequestFailed)
	})
}

func TestShopifyAdapter_GetProductByHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("handle") == "garden-shed" {
			json.NewEncoder(w).Encode(ShopifyProductListResponse{
				Products: []ShopifyProduct{{ID: 101, Title: "Garden Shed", Handle: "garden-shed"}},
			})
			return
		}
		json.NewEncoder(w).Encode(ShopifyProductListResponse{})
	}))
	defer server.Close()

	adapter := newTestShopifyAdapter(t, server.URL, nil)

	product, err := adapter.GetProductByHandle(context.Background(), "garden-shed")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "101", product.ID)

	missing, err := adapter.GetProductByHandle(context.Background(), "no-such-handle")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

// ---------------------------------------------------------------------------
// Cart Delegation Tests
// ---------------------------------------------------------------------------

func TestShopifyAdapter_AddToCart_DelegatesToAssistant(t *testing.T) {
	delegate := &fakeCartDelegate{
		response: []byte(`{
			"success": true,
			"cart": {
				"id": "cart-1",
				"items": [
					{"id": "li-1", "product_id": "101", "name": "Garden Shed", "quantity": 2, "unit_price": 299.95, "total_price": 599.9}
				],
				"item_count": 1,
				"total": 599.9
			}
		}`),
	}
	adapter := newTestShopifyAdapter(t, "http://127.0.0.1:1", delegate)

	req := commerce.AddToCartRequest{ProductID: "101", Quantity: 2, SessionID: "sess-1", Action: commerce.CartActionAdd}
	result, err := adapter.AddToCart(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, delegate.method)
	assert.Equal(t, "/assistant/cart", delegate.endpoint)
	payload, ok := delegate.body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "101", payload["product_id"])
	assert.Equal(t, 2, payload["quantity"])
	assert.Equal(t, "add", payload["action"])
	assert.Equal(t, "sess-1", payload["session_id"])

	assert.True(t, result.Success)
	assert.Equal(t, "cart-1", result.Cart.CartID)
	require.NotNil(t, result.AddedItem)
	assert.Equal(t, "li-1", result.AddedItem.ID)
	assert.True(t, result.Cart.TotalPrice.Equal(decimal.NewFromFloat(599.9)))
}

func TestShopifyAdapter_GetCart(t *testing.T) {
	t.Run("with cart", func(t *testing.T) {
		delegate := &fakeCartDelegate{
			response: []byte(`{"cart": {"id": "cart-1", "items": [], "item_count": 0, "total": 0}}`),
		}
		adapter := newTestShopifyAdapter(t, "http://127.0.0.1:1", delegate)

		cart, err := adapter.GetCart(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, delegate.method)
		assert.Equal(t, "/assistant/cart?session_id=sess-1", delegate.endpoint)
		assert.Equal(t, "cart-1", cart.CartID)
	})

	t.Run("empty response yields empty cart", func(t *testing.T) {
		delegate := &fakeCartDelegate{response: []byte(`{}`)}
		adapter := newTestShopifyAdapter(t, "http://127.0.0.1:1", delegate)

		cart, err := adapter.GetCart(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Equal(t, 0, cart.TotalItems)
	})
}

func TestShopifyAdapter_UpdateAndRemove_Delegate(t *testing.T) {
	delegate := &fakeCartDelegate{
		response: []byte(`{"success": true, "cart": {"id": "cart-1", "items": [], "item_count": 0, "total": 0}}`),
	}
	adapter := newTestShopifyAdapter(t, "http://127.0.0.1:1", delegate)

	_, err := adapter.UpdateCartItem(context.Background(), "li-1", 3, "sess-1")
	require.NoError(t, err)
	payload := delegate.body.(map[string]any)
	assert.Equal(t, "li-1", payload["cartItemId"])
	assert.Equal(t, 3, payload["quantity"])
	assert.Equal(t, "set", payload["action"])

	_, err = adapter.RemoveFromCart(context.Background(), "li-1", "sess-1")
	require.NoError(t, err)
	payload = delegate.body.(map[string]any)
	assert.Equal(t, "remove", payload["action"])
	assert.NotContains(t, payload, "quantity")
}
