package assistant

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

func TestConfig_Validate(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		err := (&Config{}).Validate()
		assert.ErrorIs(t, err, ErrConfigMissingBaseURL)
	})

	t.Run("defaults applied", func(t *testing.T) {
		config := &Config{BaseURL: "http://localhost:8000"}
		require.NoError(t, config.Validate())
		assert.Equal(t, 60, config.TimeoutSeconds)
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)
	return client
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("envelope with context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/assistant/message", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "show me tents", payload["message"])
			// Both session key spellings must be present
			assert.Equal(t, "sess-1", payload["session_id"])
			assert.Equal(t, "sess-1", payload["sessionId"])

			json.NewEncoder(w).Encode(map[string]any{
				"replyText": "Here are some tents",
				"context": map[string]any{
					"intent": "product_search",
					"query":  "tents",
				},
			})
		})

		reply, err := client.SendMessage(context.Background(), "show me tents", "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "Here are some tents", reply.Text)
		assert.Equal(t, "product_search", reply.Intent)
		assert.Equal(t, "tents", reply.Query)
		assert.Equal(t, "sess-1", reply.SessionID)
		assert.False(t, reply.Fallback)
	})

	t.Run("legacy flat shape with products", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"message": "Found one",
				"intent":  "product_search",
				"products": []map[string]any{
					{"id": "p-1", "name": "Alpine Tent", "price": 199.99, "image_url": "https://cdn.example.com/tent.jpg"},
				},
			})
		})

		reply, err := client.SendMessage(context.Background(), "tents", "sess-1")
		require.NoError(t, err)
		// replyText is absent, message is the fallback text source
		assert.Equal(t, "Found one", reply.Text)
		assert.Equal(t, "product_search", reply.Intent)

		require.Len(t, reply.Products, 1)
		product := reply.Products[0]
		assert.Equal(t, "p-1", product.ID)
		assert.Equal(t, "Alpine Tent", product.Title)
		assert.True(t, product.Price.Equal(decimal.NewFromFloat(199.99)))
		assert.Equal(t, "https://cdn.example.com/tent.jpg", product.Image)
		// No url in the response synthesizes one from the id
		assert.Equal(t, "/products/p-1", product.URL)
	})

	t.Run("unreachable service returns canned reply", func(t *testing.T) {
		client, err := NewClient(&Config{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1}, nil)
		require.NoError(t, err)

		reply, err := client.SendMessage(context.Background(), "hello", "sess-1")
		require.NoError(t, err)
		assert.True(t, reply.Fallback)
		assert.Equal(t, fallbackReplyText, reply.Text)
		assert.Equal(t, "sess-1", reply.SessionID)
	})

	t.Run("rejected request surfaces an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.SendMessage(context.Background(), "hello", "sess-1")
		assert.ErrorIs(t, err, commerce.ErrProviderRequestFailed)
	})
}

func TestClient_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})
		assert.True(t, client.HealthCheck(context.Background()))
	})

	t.Run("unhealthy status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		assert.False(t, client.HealthCheck(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		client, err := NewClient(&Config{BaseURL: "http://127.0.0.1:1"}, nil)
		require.NoError(t, err)
		assert.False(t, client.HealthCheck(context.Background()))
	})
}

func TestClient_Request(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assistant/cart", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "p-1", payload["product_id"])

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	body, err := client.Request(context.Background(), http.MethodPost, "/assistant/cart", map[string]any{
		"product_id": "p-1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true}`, string(body))
}
