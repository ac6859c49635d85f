package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/easymart/chat-backend/internal/domain/commerce"
)

const (
	// tokenExpiryLeeway refreshes the token before it actually expires
	tokenExpiryLeeway = 10 * time.Second
	// jwtAssertionLifetime is the lifetime of the signed bearer assertion
	jwtAssertionLifetime = 180 * time.Second
	// jwtBearerGrantType is the OAuth grant type for the JWT bearer flow
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// salesforceTokenSource caches the OAuth access token for the org. The JWT
// bearer flow is preferred; the password grant is a dev-only fallback.
// Concurrent refreshes collapse into a single token request.
type salesforceTokenSource struct {
	config     *SalesforceConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.RWMutex
	accessToken string
	expiry      time.Time

	group singleflight.Group
	now   func() time.Time
}

func newSalesforceTokenSource(config *SalesforceConfig, httpClient *http.Client, logger *zap.Logger) *salesforceTokenSource {
	return &salesforceTokenSource{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns a valid access token, fetching a new one when the cached
// token is absent or within the expiry leeway.
func (s *salesforceTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiry := s.accessToken, s.expiry
	s.mu.RUnlock()
	if token != "" && s.now().Before(expiry) {
		return token, nil
	}

	result, err, _ := s.group.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited
		s.mu.RLock()
		token, expiry := s.accessToken, s.expiry
		s.mu.RUnlock()
		if token != "" && s.now().Before(expiry) {
			return token, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// refresh fetches a new token and stores it with the expiry leeway applied
func (s *salesforceTokenSource) refresh(ctx context.Context) (string, error) {
	var (
		resp *salesforceTokenResponse
		err  error
	)
	switch {
	case s.config.HasJWTCredentials():
		resp, err = s.fetchWithJWT(ctx)
	case s.config.HasPasswordCredentials():
		s.logger.Warn("using password grant flow as a fallback (not recommended for production)")
		resp, err = s.fetchWithPasswordGrant(ctx)
	default:
		return "", fmt.Errorf("%w: %v", commerce.ErrProviderNotConfigured, ErrSalesforceConfigNoAuthMethod)
	}
	if err != nil {
		return "", err
	}

	expiresIn := resp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.expiry = s.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryLeeway)
	s.mu.Unlock()

	return resp.AccessToken, nil
}

// fetchWithJWT performs the OAuth 2.0 JWT bearer flow with an RS256-signed
// assertion naming the connected app, the integration user, and the token URL
func (s *salesforceTokenSource) fetchWithJWT(ctx context.Context) (*salesforceTokenResponse, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.config.PrivateKeyPEM()))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", commerce.ErrProviderAuthFailed, err)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.JWTClientID,
		Subject:   s.config.JWTUsername,
		Audience:  jwt.ClaimStrings{s.config.TokenURL},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtAssertionLifetime)),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign assertion: %v", commerce.ErrProviderAuthFailed, err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	return s.postTokenRequest(ctx, form)
}

// fetchWithPasswordGrant performs the resource owner password grant. The
// security token is appended to the password when present.
func (s *salesforceTokenSource) fetchWithPasswordGrant(ctx context.Context) (*salesforceTokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)
	form.Set("username", s.config.Username)
	form.Set("password", s.config.Password+s.config.SecurityToken)

	return s.postTokenRequest(ctx, form)
}

func (s *salesforceTokenSource) postTokenRequest(ctx context.Context, form url.Values) (*salesforceTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("salesforce: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commerce.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("salesforce: failed to read token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		s.logger.Error("token request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: HTTP %d", commerce.ErrProviderAuthFailed, resp.StatusCode)
	}

	var tokenResp salesforceTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("salesforce: failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", commerce.ErrProviderAuthFailed)
	}

	return &tokenResp, nil
}

// salesforceTokenResponse is the OAuth token endpoint response
type salesforceTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	InstanceURL string `json:"instance_url"`
}
