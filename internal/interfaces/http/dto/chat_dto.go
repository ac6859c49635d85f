package dto

// ChatRequest is the body of the chat endpoint
type ChatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId"`
	SessionIDSnake string `json:"session_id"`
}

// ResolveSessionID returns the session ID under either spelling, empty when
// the widget sent none
func (r *ChatRequest) ResolveSessionID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.SessionIDSnake
}

// ChatProduct is a product suggestion in a chat reply
type ChatProduct struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	URL         string  `json:"url"`
	Description string  `json:"description,omitempty"`
}

// ChatContext carries the conversational state back to the widget
type ChatContext struct {
	SessionID string        `json:"sessionId"`
	Intent    string        `json:"intent,omitempty"`
	Query     string        `json:"query,omitempty"`
	ProductID string        `json:"productId,omitempty"`
	Quantity  int           `json:"quantity,omitempty"`
	Products  []ChatProduct `json:"products,omitempty"`
}

// ChatResponse is the body of a successful chat turn. Intent and query are
// mirrored at the top level for widgets that predate the context object.
type ChatResponse struct {
	ReplyText string           `json:"replyText"`
	Actions   []map[string]any `json:"actions"`
	Context   ChatContext      `json:"context"`
	Intent    string           `json:"intent,omitempty"`
	Query     string           `json:"query,omitempty"`
}
