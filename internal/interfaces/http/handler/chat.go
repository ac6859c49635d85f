package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
	"github.com/easymart/chat-backend/internal/infrastructure/assistant"
	"github.com/easymart/chat-backend/internal/interfaces/http/dto"
)

// Intents the handler acts on before replying
const (
	intentProductSearch = "product_search"
	intentAddToCart     = "add_to_cart"
)

// chatSearchLimit bounds the product list attached to a search reply
const chatSearchLimit = 5

// AssistantService is the assistant surface the chat endpoint needs
type AssistantService interface {
	SendMessage(ctx context.Context, message, sessionID string) (*assistant.Reply, error)
}

// ChatCommerce is the connector surface the chat endpoint needs to act on
// assistant intents
type ChatCommerce interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]commerce.Product, error)
	AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error)
}

// ChatHandler forwards widget messages to the conversational assistant and
// fulfils the intents it returns
type ChatHandler struct {
	BaseHandler
	assistant AssistantService
	commerce  ChatCommerce
	logger    *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(assistantSvc AssistantService, commerceSvc ChatCommerce, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		assistant: assistantSvc,
		commerce:  commerceSvc,
		logger:    logger,
	}
}

// Chat godoc
// @ID           chat
// @Summary      Send a chat message
// @Description  Forwards the message to the assistant, fulfils any returned
// @Description  intent against the commerce backend, and returns the reply
// @Tags         chat
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.ChatResponse
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var body dto.ChatRequest
	// A non-string message fails binding and is rejected like a missing one
	if err := c.ShouldBindJSON(&body); err != nil || body.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required and must be a string"})
		return
	}

	sessionID := body.ResolveSessionID()
	if sessionID == "" {
		sessionID = "guest-" + uuid.NewString()
	}

	h.logger.Info("chat request received",
		zap.String("session_id", sessionID),
		zap.Int("message_length", len(body.Message)),
	)

	reply, err := h.assistant.SendMessage(c.Request.Context(), body.Message, sessionID)
	if err != nil {
		h.logger.Error("assistant call failed",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process message",
			"message": "Our assistant is temporarily unavailable. Please try again.",
		})
		return
	}

	// Fulfilment failures never fail the turn; the reply text still reaches
	// the widget
	if !reply.Fallback {
		h.fulfilIntent(c.Request.Context(), reply)
	}

	c.JSON(http.StatusOK, newChatResponse(reply))
}

// fulfilIntent acts on the assistant's intent against the commerce backend
// and enriches the reply in place
func (h *ChatHandler) fulfilIntent(ctx context.Context, reply *assistant.Reply) {
	switch reply.Intent {
	case intentProductSearch:
		if reply.Query == "" || len(reply.Products) > 0 {
			return
		}
		products, err := h.commerce.SearchProducts(ctx, reply.Query, chatSearchLimit)
		if err != nil {
			h.logger.Warn("search fulfilment failed",
				zap.Error(err),
				zap.String("query", reply.Query),
			)
			return
		}
		for i := range products {
			reply.Products = append(reply.Products, toReplyProduct(&products[i]))
		}

	case intentAddToCart:
		if reply.ProductID == "" {
			return
		}
		quantity := reply.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		result, err := h.commerce.AddToCart(ctx, commerce.AddToCartRequest{
			ProductID: reply.ProductID,
			Quantity:  quantity,
			SessionID: reply.SessionID,
			Action:    commerce.CartActionAdd,
		})
		if err != nil {
			h.logger.Warn("cart fulfilment failed",
				zap.Error(err),
				zap.String("product_id", reply.ProductID),
			)
			return
		}
		reply.Actions = append(reply.Actions, map[string]any{
			"type":      "cart_updated",
			"productId": reply.ProductID,
			"quantity":  quantity,
			"success":   result.Success,
		})
	}
}

// toReplyProduct maps a catalog product onto the chat suggestion shape
func toReplyProduct(p *commerce.Product) assistant.ReplyProduct {
	url := p.ProductURL
	if url == "" && p.ID != "" {
		url = "/products/" + p.ID
	}
	return assistant.ReplyProduct{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Image:       p.ImageURL,
		URL:         url,
		Description: p.Description,
	}
}

// newChatResponse maps an assistant reply onto the wire shape. Actions is
// always an array, never null.
func newChatResponse(reply *assistant.Reply) dto.ChatResponse {
	actions := reply.Actions
	if actions == nil {
		actions = []map[string]any{}
	}

	var products []dto.ChatProduct
	for i := range reply.Products {
		products = append(products, toChatProduct(&reply.Products[i]))
	}

	return dto.ChatResponse{
		ReplyText: reply.Text,
		Actions:   actions,
		Context: dto.ChatContext{
			SessionID: reply.SessionID,
			Intent:    reply.Intent,
			Query:     reply.Query,
			ProductID: reply.ProductID,
			Quantity:  reply.Quantity,
			Products:  products,
		},
		Intent: reply.Intent,
		Query:  reply.Query,
	}
}

func toChatProduct(product *assistant.ReplyProduct) dto.ChatProduct {
	price, _ := product.Price.Float64()
	return dto.ChatProduct{
		ID:          product.ID,
		Title:       product.Title,
		Price:       price,
		Image:       product.Image,
		URL:         product.URL,
		Description: product.Description,
	}
}
