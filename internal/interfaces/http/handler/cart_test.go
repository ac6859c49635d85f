package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

// stubCartService records calls and answers with canned results
type stubCartService struct {
	addReq    *commerce.AddToCartRequest
	addResult *commerce.CartResult
	addErr    error

	getSess string
	cart    *commerce.Cart
	cartErr error

	updateLineID string
	updateQty    int
	updateSess   string

	removeLineID string
	removeSess   string
}

func (s *stubCartService) AddToCart(_ context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error) {
	s.addReq = &req
	return s.addResult, s.addErr
}

func (s *stubCartService) GetCart(_ context.Context, sessionID string) (*commerce.Cart, error) {
	s.getSess = sessionID
	return s.cart, s.cartErr
}

func (s *stubCartService) UpdateCartItem(_ context.Context, lineItemID string, quantity int, sessionID string) (*commerce.Cart, error) {
	s.updateLineID, s.updateQty, s.updateSess = lineItemID, quantity, sessionID
	return s.cart, s.cartErr
}

func (s *stubCartService) RemoveFromCart(_ context.Context, lineItemID, sessionID string) (*commerce.Cart, error) {
	s.removeLineID, s.removeSess = lineItemID, sessionID
	return s.cart, s.cartErr
}

func testCart() *commerce.Cart {
	return &commerce.Cart{
		CartID:     "c-1",
		TotalPrice: decimal.NewFromFloat(199.99),
		TotalItems: 1,
		Currency:   "AUD",
		Items: []commerce.CartItem{
			{
				ID:         "li-1",
				ProductID:  "p-1",
				Name:       "Alpine Tent",
				Quantity:   1,
				UnitPrice:  decimal.NewFromFloat(199.99),
				TotalPrice: decimal.NewFromFloat(199.99),
			},
		},
	}
}

func newCartRouter(service *stubCartService) *gin.Engine {
	h := NewCartHandler(service, nil)
	router := gin.New()
	router.POST("/api/cart/add", h.AddToCart)
	router.GET("/api/cart", h.GetCart)
	router.PUT("/api/cart/update", h.UpdateCartItem)
	router.DELETE("/api/cart/remove", h.RemoveFromCart)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCartHandler_AddToCart(t *testing.T) {
	t.Run("adds a product", func(t *testing.T) {
		cart := testCart()
		service := &stubCartService{
			addResult: &commerce.CartResult{Success: true, Cart: *cart, AddedItem: &cart.Items[0]},
		}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"productId":"p-1","quantity":2,"sessionId":"s-1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"success": true,
			"message": "Product added to cart",
			"cart": {
				"id": "c-1",
				"items": [{
					"id": "li-1",
					"productId": "p-1",
					"name": "Alpine Tent",
					"quantity": 1,
					"unitPrice": 199.99,
					"totalPrice": 199.99
				}],
				"totalPrice": 199.99,
				"totalItems": 1,
				"currency": "AUD"
			},
			"addedItem": {
				"id": "li-1",
				"productId": "p-1",
				"name": "Alpine Tent",
				"quantity": 1,
				"unitPrice": 199.99,
				"totalPrice": 199.99
			}
		}`, w.Body.String())

		require.NotNil(t, service.addReq)
		assert.Equal(t, "p-1", service.addReq.ProductID)
		assert.Equal(t, 2, service.addReq.Quantity)
		assert.Equal(t, "s-1", service.addReq.SessionID)
		assert.Equal(t, commerce.CartActionAdd, service.addReq.Action)
	})

	t.Run("accepts snake_case aliases and defaults", func(t *testing.T) {
		service := &stubCartService{addResult: &commerce.CartResult{Success: true, Cart: *testCart()}}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"product_id":"p-2"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, service.addReq)
		assert.Equal(t, "p-2", service.addReq.ProductID)
		assert.Equal(t, 1, service.addReq.Quantity)
		assert.Equal(t, commerce.DefaultSessionID, service.addReq.SessionID)
	})

	t.Run("missing product id", func(t *testing.T) {
		service := &stubCartService{}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"productId is required"}`, w.Body.String())
		assert.Nil(t, service.addReq, "no upstream call on validation failure")
	})

	t.Run("set action without cart item id", func(t *testing.T) {
		service := &stubCartService{}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"action":"set","quantity":2}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"cartItemId is required for update/remove"}`, w.Body.String())
	})

	t.Run("set action dispatches with line id", func(t *testing.T) {
		service := &stubCartService{addResult: &commerce.CartResult{Success: true, Cart: *testCart()}}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"action":"set","lineItemId":"li-1","quantity":3}`)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, service.addReq)
		assert.Equal(t, commerce.CartActionSet, service.addReq.Action)
		assert.Equal(t, "li-1", service.addReq.CartItemID)
		assert.Equal(t, 3, service.addReq.Quantity)
	})

	t.Run("backend rejection surfaces as 400", func(t *testing.T) {
		service := &stubCartService{
			addResult: &commerce.CartResult{Success: false, Error: "Product out of stock"},
		}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"productId":"p-1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Product out of stock"}`, w.Body.String())
	})

	t.Run("rejection without detail gets a default message", func(t *testing.T) {
		service := &stubCartService{addResult: &commerce.CartResult{Success: false}}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"productId":"p-1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Failed to add product to cart"}`, w.Body.String())
	})

	t.Run("backend failure surfaces as 500", func(t *testing.T) {
		service := &stubCartService{addErr: errors.New("upstream down")}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPost, "/api/cart/add", `{"productId":"p-1"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"upstream down"}`, w.Body.String())
	})
}

func TestCartHandler_GetCart(t *testing.T) {
	t.Run("returns the session cart", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodGet, "/api/cart?sessionId=s-1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "s-1", service.getSess)
		assert.Contains(t, w.Body.String(), `"success":true`)
		assert.Contains(t, w.Body.String(), `"currency":"AUD"`)
		// Fetching a cart carries no mutation message
		assert.NotContains(t, w.Body.String(), `"message"`)
	})

	t.Run("accepts the contextToken query alias", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		doJSON(router, http.MethodGet, "/api/cart?contextToken=abc123", "")
		assert.Equal(t, "abc123", service.getSess)
	})

	t.Run("defaults the session", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		doJSON(router, http.MethodGet, "/api/cart", "")
		assert.Equal(t, commerce.DefaultSessionID, service.getSess)
	})

	t.Run("backend failure surfaces as 500", func(t *testing.T) {
		service := &stubCartService{cartErr: errors.New("upstream down")}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodGet, "/api/cart", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"upstream down"}`, w.Body.String())
	})
}

func TestCartHandler_UpdateCartItem(t *testing.T) {
	t.Run("updates a line", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPut, "/api/cart/update", `{"lineItemId":"li-1","quantity":3,"contextToken":"s-1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"Cart updated"`)
		assert.Equal(t, "li-1", service.updateLineID)
		assert.Equal(t, 3, service.updateQty)
		assert.Equal(t, "s-1", service.updateSess)
	})

	t.Run("zero quantity is a valid update", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPut, "/api/cart/update", `{"cartItemId":"li-1","quantity":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, service.updateQty)
	})

	t.Run("missing line id or quantity", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"no line id", `{"quantity":2}`},
			{"no quantity", `{"lineItemId":"li-1"}`},
			{"empty body", `{}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				service := &stubCartService{}
				router := newCartRouter(service)

				w := doJSON(router, http.MethodPut, "/api/cart/update", tt.body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.JSONEq(t, `{"success":false,"error":"lineItemId and quantity are required"}`, w.Body.String())
			})
		}
	})

	t.Run("backend failure surfaces as 500", func(t *testing.T) {
		service := &stubCartService{cartErr: errors.New("upstream down")}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodPut, "/api/cart/update", `{"lineItemId":"li-1","quantity":2}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCartHandler_RemoveFromCart(t *testing.T) {
	t.Run("removes a line", func(t *testing.T) {
		service := &stubCartService{cart: testCart()}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodDelete, "/api/cart/remove", `{"line_item_id":"li-1","session_id":"s-2"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"Item removed from cart"`)
		assert.Equal(t, "li-1", service.removeLineID)
		assert.Equal(t, "s-2", service.removeSess)
	})

	t.Run("missing line id", func(t *testing.T) {
		service := &stubCartService{}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodDelete, "/api/cart/remove", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"lineItemId is required"}`, w.Body.String())
	})

	t.Run("backend failure surfaces as 500", func(t *testing.T) {
		service := &stubCartService{cartErr: errors.New("upstream down")}
		router := newCartRouter(service)

		w := doJSON(router, http.MethodDelete, "/api/cart/remove", `{"lineItemId":"li-1"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
