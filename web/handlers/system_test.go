package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapleai/maple/internal/config"
	"github.com/mapleai/maple/pkg/types"
)

func TestHealth(t *testing.T) {
	h := NewSystemHandlers(newStubStore(), nil, &config.Config{}, nil, "1.0.0")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "1.0.0", resp["version"])
}

func TestStats(t *testing.T) {
	store := newStubStore()
	now := time.Now()
	require.NoError(t, store.CreateUser(context.Background(), &types.User{
		ID: "u1", Email: "a@b.com", Username: "a", JoinedAt: now, LastActiveAt: now,
	}))
	require.NoError(t, store.AppendMessage(context.Background(), &types.ChatMessage{
		ID: "m1", UserID: "u1", Content: "hi", IsUser: true, CreatedAt: now,
	}))

	h := NewSystemHandlers(store, nil, &config.Config{}, nil, "1.0.0")
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Users)
	assert.Equal(t, 1, resp.Messages)
	assert.Equal(t, 0, resp.Companions)
}

func TestUserConfigRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.User.CompanionName = "Maple"
	cfg.User.Voice = "maple_default"
	h := NewSystemHandlers(newStubStore(), nil, cfg, nil, "1.0.0")

	rec := httptest.NewRecorder()
	h.GetUserConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config/user", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Maple", resp.CompanionName)

	body, _ := json.Marshal(UserConfigRequest{CompanionName: "Willow"})
	rec = httptest.NewRecorder()
	h.PostUserConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config/user", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Willow", resp.CompanionName)
	// Untouched fields keep their values.
	assert.Equal(t, "maple_default", resp.Voice)
}
