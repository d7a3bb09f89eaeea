package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is how long issued bearer tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// tokenClaims is the signed payload carried in a bearer token.
type tokenClaims struct {
	Subject   string    `json:"sub"`
	ID        string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenIssuer mints and verifies HMAC-SHA256 signed bearer tokens of the form
// base64url(claims) + "." + base64url(signature).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl uses DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue mints a token for the given user ID.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := t.now().UTC()
	claims := tokenClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshaling token claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + t.sign(encoded), nil
}

// Verify checks a token's signature and expiry and returns the user ID.
func (t *TokenIssuer) Verify(token string) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}

	if !hmac.Equal([]byte(t.sign(encoded)), []byte(sig)) {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}

	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" || !t.now().Before(claims.ExpiresAt) {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (t *TokenIssuer) sign(encoded string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
