package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapleai/maple/internal/auth"
)

func newAuthFixture(t *testing.T) (*AuthHandlers, *stubStore, *auth.TokenIssuer) {
	t.Helper()
	store := newStubStore()
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	resets := auth.NewResetTokens(15 * time.Minute)
	return NewAuthHandlers(store, tokens, resets, nil), store, tokens
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	h, _, tokens := newAuthFixture(t)

	rec := postJSON(t, h.Register, "/api/auth/register", RegisterRequest{
		Email:    "maple@example.com",
		Username: "maplefan",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "maplefan", resp.User.Username)

	userID, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestRegisterValidation(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "u", Password: "hunter2hunter2"}},
		{"missing username", RegisterRequest{Email: "a@b.com", Password: "hunter2hunter2"}},
		{"short password", RegisterRequest{Email: "a@b.com", Username: "u", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, "/api/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	req := RegisterRequest{Email: "dup@example.com", Username: "dup", Password: "hunter2hunter2"}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Register, "/api/auth/register", req).Code)
	assert.Equal(t, http.StatusConflict, postJSON(t, h.Register, "/api/auth/register", req).Code)
}

func TestLogin(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	reg := RegisterRequest{Email: "login@example.com", Username: "login", Password: "hunter2hunter2"}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Register, "/api/auth/register", reg).Code)

	rec := postJSON(t, h.Login, "/api/auth/login", LoginRequest{Email: reg.Email, Password: reg.Password})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// Wrong password and unknown email give the same answer.
	assert.Equal(t, http.StatusUnauthorized,
		postJSON(t, h.Login, "/api/auth/login", LoginRequest{Email: reg.Email, Password: "wrong-password"}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		postJSON(t, h.Login, "/api/auth/login", LoginRequest{Email: "nobody@example.com", Password: "whatever"}).Code)
}

func TestPasswordReset(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	reg := RegisterRequest{Email: "reset@example.com", Username: "reset", Password: "hunter2hunter2"}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Register, "/api/auth/register", reg).Code)

	rec := postJSON(t, h.RequestReset, "/api/auth/reset-token", ResetRequest{Email: reg.Email})
	require.Equal(t, http.StatusOK, rec.Code)
	var reset ResetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	require.NotEmpty(t, reset.ResetToken)

	rec = postJSON(t, h.ConfirmReset, "/api/auth/reset-password", ResetConfirmRequest{
		ResetToken:  reset.ResetToken,
		NewPassword: "new-password-123",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Old password no longer works, new one does.
	assert.Equal(t, http.StatusUnauthorized,
		postJSON(t, h.Login, "/api/auth/login", LoginRequest{Email: reg.Email, Password: reg.Password}).Code)
	assert.Equal(t, http.StatusOK,
		postJSON(t, h.Login, "/api/auth/login", LoginRequest{Email: reg.Email, Password: "new-password-123"}).Code)

	// Reset tokens are single-use.
	rec = postJSON(t, h.ConfirmReset, "/api/auth/reset-password", ResetConfirmRequest{
		ResetToken:  reset.ResetToken,
		NewPassword: "another-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetUnknownEmailDoesNotLeak(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	rec := postJSON(t, h.RequestReset, "/api/auth/reset-token", ResetRequest{Email: "ghost@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reset ResetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.Empty(t, reset.ResetToken)
}

func TestMe(t *testing.T) {
	h, _, tokens := newAuthFixture(t)

	reg := RegisterRequest{Email: "me@example.com", Username: "me", Password: "hunter2hunter2"}
	rec := postJSON(t, h.Register, "/api/auth/register", reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	protected := RequireAuth(http.HandlerFunc(h.Me), tokens)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	out := httptest.NewRecorder()
	protected.ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &me))
	assert.Equal(t, "me", me["username"])
}
