package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// fallbackReplyText is returned when the assistant service is unreachable
	fallbackReplyText = "I'm temporarily unavailable. Please try again in a moment."
	// healthCheckTimeout bounds the health probe independently of the
	// long-running message timeout
	healthCheckTimeout = 5 * time.Second
	// maxResponseSize limits how much of a response body is read
	maxResponseSize = 10 * 1024 * 1024
)

// ErrConfigMissingBaseURL is returned when no assistant base URL is configured
var ErrConfigMissingBaseURL = errors.New("assistant: base URL is required")

// Config holds the assistant service client settings
type Config struct {
	// BaseURL is the assistant service base, e.g. http://localhost:8000
	BaseURL string
	// TimeoutSeconds is the message request timeout. Assistant turns can
	// involve model inference, so the default is generous.
	TimeoutSeconds int
}

// Validate validates the assistant configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	return nil
}

// Reply is a normalized assistant turn. The service answers in two shapes,
// an envelope with a context object and a flat legacy form; both map here.
type Reply struct {
	Text      string
	Intent    string
	Query     string
	ProductID string
	Quantity  int
	SessionID string
	Products  []ReplyProduct
	Actions   []map[string]any
	// Fallback marks a canned reply produced because the service was
	// unreachable
	Fallback bool
}

// ReplyProduct is a product suggestion embedded in an assistant reply
type ReplyProduct struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
}

// Client talks to the conversational assistant service. It also serves as
// the cart backend for the Shopify storefront, which keeps cart state next
// to the conversation.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new assistant client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger.With(zap.String("service", "assistant")),
	}, nil
}

// SendMessage forwards a chat message and returns the normalized reply.
// When the service is unreachable the reply carries a canned text and
// Fallback=true instead of an error, so the widget always has something
// to show.
func (c *Client) SendMessage(ctx context.Context, message, sessionID string) (*Reply, error) {
	c.logger.Info("sending message to assistant",
		zap.String("session_id", sessionID),
		zap.Int("message_length", len(message)),
	)

	// Both key spellings ride along; deployed assistant versions disagree
	// on which one they read
	payload := map[string]any{
		"message":    message,
		"session_id": sessionID,
		"sessionId":  sessionID,
	}

	body, err := c.Request(ctx, http.MethodPost, "/assistant/message", payload)
	if err != nil {
		if errors.Is(err, commerce.ErrProviderUnavailable) {
			c.logger.Warn("assistant unavailable, returning fallback reply",
				zap.String("session_id", sessionID),
			)
			return &Reply{Text: fallbackReplyText, SessionID: sessionID, Fallback: true}, nil
		}
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("assistant: failed to parse response: %w", err)
	}

	reply := normalizeReply(data, sessionID)
	c.logger.Info("assistant reply received",
		zap.String("session_id", sessionID),
		zap.String("intent", reply.Intent),
	)
	return reply, nil
}

// HealthCheck probes the assistant service with a short timeout
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode == http.StatusOK
}

// Request performs a raw request against the assistant service and returns
// the response body. Transport failures map to ErrProviderUnavailable,
// rejected requests to ErrProviderRequestFailed.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("assistant: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("assistant request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("method", method),
			zap.String("endpoint", endpoint),
		)
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// ---------------------------------------------------------------------------
// Reply Normalization
// ---------------------------------------------------------------------------

// normalizeReply maps an assistant response to the Reply shape. Context
// fields win over flat fields; the flat form is the legacy shape.
func normalizeReply(data map[string]any, sessionID string) *Reply {
	replyCtx, _ := data["context"].(map[string]any)

	text := stringField(data, "replyText")
	if text == "" {
		text = stringField(data, "message")
	}

	reply := &Reply{
		Text:      text,
		Intent:    firstString(replyCtx, data, "intent"),
		Query:     firstString(replyCtx, data, "query"),
		ProductID: firstString(replyCtx, data, "productId"),
		Quantity:  int(firstNumber(replyCtx, data, "quantity")),
		SessionID: stringField(data, "session_id"),
	}
	if reply.SessionID == "" {
		reply.SessionID = sessionID
	}

	if actions, ok := data["actions"].([]any); ok {
		for _, raw := range actions {
			if action, ok := raw.(map[string]any); ok {
				reply.Actions = append(reply.Actions, action)
			}
		}
	}

	if products, ok := data["products"].([]any); ok {
		for _, raw := range products {
			product, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			reply.Products = append(reply.Products, normalizeReplyProduct(product))
		}
	}

	return reply
}

func normalizeReplyProduct(product map[string]any) ReplyProduct {
	id := stringField(product, "id")

	title := stringField(product, "name")
	if title == "" {
		title = stringField(product, "title")
	}

	image := stringField(product, "image_url")
	if image == "" {
		image = stringField(product, "image")
	}

	url := stringField(product, "url")
	if url == "" && id != "" {
		url = "/products/" + id
	}

	return ReplyProduct{
		ID:          id,
		Title:       title,
		Price:       decimalField(product, "price"),
		Image:       image,
		URL:         url,
		Description: stringField(product, "description"),
	}
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	}
	return ""
}

func numberField(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case float64:
		return v
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			f, _ := d.Float64()
			return f
		}
	}
	return 0
}

func decimalField(data map[string]any, key string) decimal.Decimal {
	switch v := data[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// firstString resolves a key through the context object first, the flat
// response second
func firstString(replyCtx, data map[string]any, key string) string {
	if v := stringField(replyCtx, key); v != "" {
		return v
	}
	return stringField(data, key)
}

func firstNumber(replyCtx, data map[string]any, key string) float64 {
	if v := numberField(replyCtx, key); v != 0 {
		return v
	}
	return numberField(data, key)
}
