package handler

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymart/chat-backend/internal/infrastructure/assistant"
)

func TestNewChatResponse(t *testing.T) {
	t.Run("full reply", func(t *testing.T) {
		reply := &assistant.Reply{
			Text:      "Here are some tents",
			Intent:    "product_search",
			Query:     "tents",
			ProductID: "p-1",
			Quantity:  2,
			SessionID: "s-1",
			Actions:   []map[string]any{{"type": "show_products"}},
			Products: []assistant.ReplyProduct{
				{
					ID:    "p-1",
					Title: "Alpine Tent",
					Price: decimal.NewFromFloat(199.99),
					Image: "https://cdn.example.com/tent.jpg",
					URL:   "/products/p-1",
				},
			},
		}

		resp := newChatResponse(reply)
		assert.Equal(t, "Here are some tents", resp.ReplyText)
		assert.Equal(t, "product_search", resp.Intent)
		assert.Equal(t, "tents", resp.Query)
		assert.Equal(t, "s-1", resp.Context.SessionID)
		assert.Equal(t, "product_search", resp.Context.Intent)
		assert.Equal(t, "p-1", resp.Context.ProductID)
		assert.Equal(t, 2, resp.Context.Quantity)
		require.Len(t, resp.Context.Products, 1)
		assert.Equal(t, 199.99, resp.Context.Products[0].Price)
		assert.Len(t, resp.Actions, 1)
	})

	t.Run("bare reply serializes actions as an array", func(t *testing.T) {
		resp := newChatResponse(&assistant.Reply{Text: "Hello", SessionID: "s-1"})

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"actions":[]`)
		// Empty optional fields stay off the wire
		assert.NotContains(t, string(data), `"intent"`)
		assert.NotContains(t, string(data), `"products"`)
	})
}
