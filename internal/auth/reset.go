package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultResetTTL is how long a password reset token stays redeemable.
const DefaultResetTTL = 15 * time.Minute

// resetCacheSize bounds outstanding reset tokens; oldest entries are evicted
// first when the cache fills.
const resetCacheSize = 1024

// ResetTokens issues short-lived one-shot password reset tokens, held in an
// expiring in-memory cache so restarts invalidate them all.
type ResetTokens struct {
	cache *expirable.LRU[string, string]
}

// NewResetTokens creates a reset token issuer. A zero ttl uses DefaultResetTTL.
func NewResetTokens(ttl time.Duration) *ResetTokens {
	if ttl == 0 {
		ttl = DefaultResetTTL
	}
	return &ResetTokens{
		cache: expirable.NewLRU[string, string](resetCacheSize, nil, ttl),
	}
}

// Issue creates a reset token bound to the given user ID.
func (r *ResetTokens) Issue(userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}

	token := hex.EncodeToString(buf)
	r.cache.Add(token, userID)
	return token, nil
}

// Redeem consumes a reset token and returns the bound user ID. Tokens are
// single-use; a second redemption fails with ErrInvalidToken, as does an
// expired or unknown token.
func (r *ResetTokens) Redeem(token string) (string, error) {
	userID, ok := r.cache.Get(token)
	if !ok {
		return "", ErrInvalidToken
	}
	r.cache.Remove(token)
	return userID, nil
}
