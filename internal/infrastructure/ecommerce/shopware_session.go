package ecommerce

import (
	"regexp"
	"sync"
)

// contextTokenPattern matches a raw sw-context-token: 32 hex characters.
// A session id of that shape is used as the token directly, letting widget
// clients resume a Shopware context without a server-side mapping.
var contextTokenPattern = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

// shopwareSessionStore maps widget session ids to sw-context-token values.
// Tokens live for the process lifetime; concurrent writers for the same
// session follow last-writer-wins, which is safe because every write is a
// token Shopware just issued for that session.
type shopwareSessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func newShopwareSessionStore() *shopwareSessionStore {
	return &shopwareSessionStore{
		tokens: make(map[string]string),
	}
}

// Get resolves a session id to a context token. A session id that is itself
// a 32-hex token bypasses the store.
func (s *shopwareSessionStore) Get(sessionID string) string {
	if isContextToken(sessionID) {
		return sessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[sessionID]
}

// Set records the context token for a session
func (s *shopwareSessionStore) Set(sessionID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
}

// Len returns the number of tracked sessions
func (s *shopwareSessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func isContextToken(sessionID string) bool {
	return len(sessionID) == 32 && contextTokenPattern.MatchString(sessionID)
}
