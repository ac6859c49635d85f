package dto

import (
	"github.com/easymart/chat-backend/internal/domain/commerce"
)

// CartMutationRequest is the body of every cart endpoint. Widget builds
// disagree on field spelling, so each field accepts every spelling seen in
// the wild and Resolve picks the first one present.
type CartMutationRequest struct {
	ProductID      string `json:"productId"`
	ProductIDSnake string `json:"product_id"`
	ProductIDBare  string `json:"id"`

	CartItemID      string `json:"cartItemId"`
	LineItemID      string `json:"lineItemId"`
	LineItemIDSnake string `json:"line_item_id"`

	SessionID      string `json:"sessionId"`
	SessionIDSnake string `json:"session_id"`
	ContextToken   string `json:"contextToken"`

	// Quantity distinguishes absent from zero; updates require it while
	// adds default it to one
	Quantity *int `json:"quantity"`
	Qty      *int `json:"qty"`

	// Action selects add, set, or remove on the combined mutation endpoint
	Action string `json:"action"`
}

// ResolveAction returns the requested cart action, defaulting to add
func (r *CartMutationRequest) ResolveAction() commerce.CartAction {
	if r.Action == "" {
		return commerce.CartActionAdd
	}
	return commerce.CartAction(r.Action)
}

// ResolveProductID returns the product ID under any accepted spelling
func (r *CartMutationRequest) ResolveProductID() string {
	switch {
	case r.ProductID != "":
		return r.ProductID
	case r.ProductIDSnake != "":
		return r.ProductIDSnake
	}
	return r.ProductIDBare
}

// ResolveCartItemID returns the cart line ID under any accepted spelling
func (r *CartMutationRequest) ResolveCartItemID() string {
	switch {
	case r.CartItemID != "":
		return r.CartItemID
	case r.LineItemID != "":
		return r.LineItemID
	}
	return r.LineItemIDSnake
}

// ResolveSessionID returns the session ID under any accepted spelling,
// falling back to the shared default session
func (r *CartMutationRequest) ResolveSessionID() string {
	switch {
	case r.SessionID != "":
		return r.SessionID
	case r.SessionIDSnake != "":
		return r.SessionIDSnake
	case r.ContextToken != "":
		return r.ContextToken
	}
	return commerce.DefaultSessionID
}

// ResolveQuantity returns the quantity, or the fallback when absent
func (r *CartMutationRequest) ResolveQuantity(fallback int) int {
	switch {
	case r.Quantity != nil:
		return *r.Quantity
	case r.Qty != nil:
		return *r.Qty
	}
	return fallback
}

// HasQuantity reports whether the request carried a quantity at all
func (r *CartMutationRequest) HasQuantity() bool {
	return r.Quantity != nil || r.Qty != nil
}

// CartItemView is one cart line as the widget renders it
type CartItemView struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	ImageURL   string  `json:"imageUrl,omitempty"`
}

// CartView is the cart as the widget renders it. Prices are plain JSON
// numbers.
type CartView struct {
	ID         string         `json:"id"`
	Items      []CartItemView `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
	TotalItems int            `json:"totalItems"`
	Currency   string         `json:"currency"`
}

// CartEnvelope is the response body of every cart endpoint
type CartEnvelope struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Cart      *CartView     `json:"cart,omitempty"`
	AddedItem *CartItemView `json:"addedItem,omitempty"`
}

// NewCartItemView maps a domain cart line onto the wire shape
func NewCartItemView(item *commerce.CartItem) CartItemView {
	unitPrice, _ := item.UnitPrice.Float64()
	totalPrice, _ := item.TotalPrice.Float64()
	return CartItemView{
		ID:         item.ID,
		ProductID:  item.ProductID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		ImageURL:   item.ImageURL,
	}
}

// NewCartView maps a domain cart onto the wire shape. Items is always an
// array, never null.
func NewCartView(cart *commerce.Cart) *CartView {
	if cart == nil {
		return nil
	}

	items := make([]CartItemView, 0, len(cart.Items))
	for i := range cart.Items {
		items = append(items, NewCartItemView(&cart.Items[i]))
	}

	totalPrice, _ := cart.TotalPrice.Float64()
	return &CartView{
		ID:         cart.CartID,
		Items:      items,
		TotalPrice: totalPrice,
		TotalItems: cart.TotalItems,
		Currency:   cart.Currency,
	}
}

// NewCartEnvelope builds a success envelope around a cart
func NewCartEnvelope(message string, cart *commerce.Cart, addedItem *commerce.CartItem) CartEnvelope {
	envelope := CartEnvelope{
		Success: true,
		Message: message,
		Cart:    NewCartView(cart),
	}
	if addedItem != nil {
		view := NewCartItemView(addedItem)
		envelope.AddedItem = &view
	}
	return envelope
}

// NewCartErrorEnvelope builds a rejection envelope
func NewCartErrorEnvelope(message string) CartEnvelope {
	return CartEnvelope{
		Success: false,
		Error:   message,
	}
}
