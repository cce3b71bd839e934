package auth

import (
	"context"
	"time"

	"sneakerdex/internal/cache"
)

const (
	revokedSessionKeyPrefix = "revoked:session:"
	oauthStateKeyPrefix     = "oauth:state:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
}

// TokenStore keeps session revocations and pending OAuth states in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeSession marks a session id as signed out until its token would have expired anyway.
func (s *TokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedSessionKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsSessionRevoked checks the revocation list. An unreachable cache reads as not revoked.
func (s *TokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, revokedSessionKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}

// SaveOAuthState remembers an issued OAuth state value.
func (s *TokenStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return s.cache.Set(ctx, oauthStateKeyPrefix+state, []byte("1"), ttl)
}

// ConsumeOAuthState reports whether state was issued and not yet used, and
// removes it. An unreachable cache reads as unknown state.
func (s *TokenStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	data, err := s.cache.Take(ctx, oauthStateKeyPrefix+state)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
