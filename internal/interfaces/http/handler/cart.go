package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
	"github.com/easymart/chat-backend/internal/interfaces/http/dto"
)

// CartService is the application-layer surface the cart endpoints need
type CartService interface {
	AddToCart(ctx context.Context, req commerce.AddToCartRequest) (*commerce.CartResult, error)
	GetCart(ctx context.Context, sessionID string) (*commerce.Cart, error)
	UpdateCartItem(ctx context.Context, lineItemID string, quantity int, sessionID string) (*commerce.Cart, error)
	RemoveFromCart(ctx context.Context, lineItemID, sessionID string) (*commerce.Cart, error)
}

// CartHandler serves the storefront cart endpoints. Responses use the
// widget's envelope, not the standard API envelope, because shipped widget
// builds parse it directly.
type CartHandler struct {
	BaseHandler
	service CartService
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service CartService, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// AddToCart godoc
// @ID           addToCart
// @Summary      Add a product to the cart
// @Description  Adds a product, or with an action field sets or removes a line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.CartEnvelope
// @Failure      400 {object} dto.CartEnvelope
// @Router       /cart/add [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var body dto.CartMutationRequest
	// A missing or malformed body behaves like an empty one
	_ = c.ShouldBindJSON(&body)

	action := body.ResolveAction()
	productID := body.ResolveProductID()
	cartItemID := body.ResolveCartItemID()
	sessionID := body.ResolveSessionID()
	quantity := body.ResolveQuantity(1)

	if action == commerce.CartActionAdd && productID == "" {
		c.JSON(http.StatusBadRequest, dto.NewCartErrorEnvelope("productId is required"))
		return
	}
	if (action == commerce.CartActionSet || action == commerce.CartActionRemove) && cartItemID == "" {
		c.JSON(http.StatusBadRequest, dto.NewCartErrorEnvelope("cartItemId is required for update/remove"))
		return
	}

	h.logger.Info("adding to cart",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("session_id", sessionID),
		zap.String("action", action.String()),
	)

	result, err := h.service.AddToCart(c.Request.Context(), commerce.AddToCartRequest{
		ProductID:  productID,
		CartItemID: cartItemID,
		Quantity:   quantity,
		SessionID:  sessionID,
		Action:     action,
	})
	if err != nil {
		h.logger.Error("cart add failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewCartErrorEnvelope(err.Error()))
		return
	}

	if !result.Success {
		message := result.Error
		if message == "" {
			message = "Failed to add product to cart"
		}
		c.JSON(http.StatusBadRequest, dto.NewCartErrorEnvelope(message))
		return
	}

	c.JSON(http.StatusOK, dto.NewCartEnvelope("Product added to cart", &result.Cart, result.AddedItem))
}

// GetCart godoc
// @ID           getCart
// @Summary      Get the session's cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.CartEnvelope
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := firstQuery(c, "sessionId", "session_id", "contextToken")
	if sessionID == "" {
		sessionID = commerce.DefaultSessionID
	}

	h.logger.Info("getting cart", zap.String("session_id", sessionID))

	cart, err := h.service.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("cart get failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewCartErrorEnvelope(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewCartEnvelope("", cart, nil))
}

// UpdateCartItem godoc
// @ID           updateCartItem
// @Summary      Set a cart line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.CartEnvelope
// @Failure      400 {object} dto.CartEnvelope
// @Router       /cart/update [put]
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var body dto.CartMutationRequest
	_ = c.ShouldBindJSON(&body)

	lineItemID := body.ResolveCartItemID()
	sessionID := body.ResolveSessionID()

	if lineItemID == "" || !body.HasQuantity() {
		c.JSON(http.StatusBadRequest, dto.NewCartErrorEnvelope("lineItemId and quantity are required"))
		return
	}
	quantity := body.ResolveQuantity(0)

	h.logger.Info("updating cart item",
		zap.String("line_item_id", lineItemID),
		zap.Int("quantity", quantity),
		zap.String("session_id", sessionID),
	)

	cart, err := h.service.UpdateCartItem(c.Request.Context(), lineItemID, quantity, sessionID)
	if err != nil {
		h.logger.Error("cart update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewCartErrorEnvelope(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewCartEnvelope("Cart updated", cart, nil))
}

// RemoveFromCart godoc
// @ID           removeFromCart
// @Summary      Remove a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.CartEnvelope
// @Failure      400 {object} dto.CartEnvelope
// @Router       /cart/remove [delete]
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	var body dto.CartMutationRequest
	_ = c.ShouldBindJSON(&body)

	lineItemID := body.ResolveCartItemID()
	sessionID := body.ResolveSessionID()

	if lineItemID == "" {
		c.JSON(http.StatusBadRequest, dto.NewCartErrorEnvelope("lineItemId is required"))
		return
	}

	h.logger.Info("removing from cart",
		zap.String("line_item_id", lineItemID),
		zap.String("session_id", sessionID),
	)

	cart, err := h.service.RemoveFromCart(c.Request.Context(), lineItemID, sessionID)
	if err != nil {
		h.logger.Error("cart remove failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewCartErrorEnvelope(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewCartEnvelope("Item removed from cart", cart, nil))
}

// firstQuery returns the first non-empty query parameter among the keys
func firstQuery(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}
