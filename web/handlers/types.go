// Package handlers provides the HTTP handlers and middleware for the Maple
// companion API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mapleai/maple/pkg/types"
)

// ErrorResponse is the standard error format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// ResetRequest asks for a password reset token.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetResponse carries the single-use reset token. There is no mail
// delivery; the token is handed straight back to the caller.
type ResetResponse struct {
	ResetToken string `json:"reset_token"`
	ExpiresIn  string `json:"expires_in"`
}

// ResetConfirmRequest redeems a reset token for a new password.
type ResetConfirmRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// ChatRequest is the body for POST /api/chat/message and /api/guest/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// HistoryResponse is returned by GET /api/chat/history.
type HistoryResponse struct {
	Messages []*types.ChatMessage `json:"messages"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
}

// SuggestionsResponse is returned by GET /api/chat/suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// InteractRequest is the body for POST /api/companion/interact.
type InteractRequest struct {
	Action string `json:"action"`
}

// SynthesizeRequest is the body for POST /api/tts/synthesize.
type SynthesizeRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// UserConfigResponse is returned by GET /api/config/user.
type UserConfigResponse struct {
	CompanionName string `json:"companion_name"`
	Voice         string `json:"voice"`
}

// UserConfigRequest is the body for POST /api/config/user. Empty fields are
// left unchanged.
type UserConfigRequest struct {
	CompanionName string `json:"companion_name,omitempty"`
	Voice         string `json:"voice,omitempty"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	Users      int `json:"users"`
	Messages   int `json:"messages"`
	Companions int `json:"companions"`
	Memories   int `json:"memories"`
}

func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing more to do.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		resp.Details = map[string]interface{}{"error": err.Error()}
	}
	respondJSON(w, statusCode, resp)
}
