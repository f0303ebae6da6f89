package services

import (
	"sync"
	"time"
)

const sessionTTL = 30 * 24 * time.Hour

type sessionInfo struct {
	UserID    string
	ExpiresAt time.Time
}

// TokenStore manages user sessions
type TokenStore struct {
	sessions map[string]*sessionInfo // token -> session
	mu       sync.RWMutex
}

var (
	tokenStore *TokenStore
	once       sync.Once
)

// GetTokenStore returns the singleton token store instance
func GetTokenStore() *TokenStore {
	once.Do(func() {
		tokenStore = NewTokenStore()
		go tokenStore.cleanupExpired()
	})
	return tokenStore
}

// NewTokenStore creates a standalone token store (used in tests)
func NewTokenStore() *TokenStore {
	return &TokenStore{
		sessions: make(map[string]*sessionInfo),
	}
}

// StoreToken stores a token with its associated user ID
func (ts *TokenStore) StoreToken(token, userID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.sessions[token] = &sessionInfo{
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
}

// GetUserID retrieves the user ID associated with a token
func (ts *TokenStore) GetUserID(token string) (string, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	session, exists := ts.sessions[token]
	if !exists {
		return "", false
	}
	if time.Now().After(session.ExpiresAt) {
		return "", false
	}
	return session.UserID, true
}

// DeleteToken removes a token from the store
func (ts *TokenStore) DeleteToken(token string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.sessions, token)
}

// DeleteTokensForUser ends every session belonging to a user. Used when an
// account is disabled or its permissions are revoked.
func (ts *TokenStore) DeleteTokensForUser(userID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for token, session := range ts.sessions {
		if session.UserID == userID {
			delete(ts.sessions, token)
		}
	}
}

// RefreshToken extends the expiration time of an existing token
func (ts *TokenStore) RefreshToken(token string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	session, exists := ts.sessions[token]
	if !exists {
		return false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(ts.sessions, token)
		return false
	}
	session.ExpiresAt = time.Now().Add(sessionTTL)
	return true
}

// cleanupExpired removes expired sessions periodically
func (ts *TokenStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ts.mu.Lock()
		now := time.Now()
		for token, session := range ts.sessions {
			if now.After(session.ExpiresAt) {
				delete(ts.sessions, token)
			}
		}
		ts.mu.Unlock()
	}
}
