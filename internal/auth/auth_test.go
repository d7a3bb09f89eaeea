package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}

	if err := CheckPassword(hash, "hunter2hunter2"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("subject = %q, want user-42", userID)
	}
}

func TestTokenTampered(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	token, _ := issuer.Issue("user-42")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", strings.ReplaceAll(token, ".", "")},
		{"flipped payload byte", "A" + token[1:]},
		{"truncated signature", token[:len(token)-4]},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _ := NewTokenIssuer([]byte("secret-a"), time.Hour).Issue("user-42")

	if _, err := NewTokenIssuer([]byte("secret-b"), time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret accepted: %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Minute)
	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	issuer.now = func() time.Time { return issued }
	token, _ := issuer.Issue("user-42")

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token accepted: %v", err)
	}
}

func TestResetTokenSingleUse(t *testing.T) {
	tokens := NewResetTokens(time.Minute)

	token, err := tokens.Issue("user-7")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	userID, err := tokens.Redeem(token)
	if err != nil {
		t.Fatalf("Redeem() error: %v", err)
	}
	if userID != "user-7" {
		t.Errorf("bound user = %q, want user-7", userID)
	}

	if _, err := tokens.Redeem(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("second redemption accepted: %v", err)
	}
}

func TestResetTokenUnknown(t *testing.T) {
	tokens := NewResetTokens(time.Minute)
	if _, err := tokens.Redeem("deadbeef"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token accepted: %v", err)
	}
}
