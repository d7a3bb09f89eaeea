package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/mapleai/maple/internal/auth"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

const minPasswordLength = 8

// AuthHandlers serves registration, login, and password reset.
type AuthHandlers struct {
	users  storage.UserStore
	tokens *auth.TokenIssuer
	resets *auth.ResetTokens
	logger *slog.Logger
}

func NewAuthHandlers(users storage.UserStore, tokens *auth.TokenIssuer, resets *auth.ResetTokens, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{users: users, tokens: tokens, resets: resets, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address", nil)
		return
	}
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "username is required", nil)
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		JoinedAt:     now,
		LastActiveAt: now,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, "email or username already taken", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create user", err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	respondJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Uniform response for unknown email and wrong password.
		respondError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	if err := h.users.TouchLastActive(r.Context(), user.ID); err != nil {
		h.logger.Warn("failed to touch last active", "user_id", user.ID, "error", err)
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// RequestReset handles POST /api/auth/reset-token. The reset token goes back
// in the response body; there is no mail delivery.
func (h *AuthHandlers) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Don't reveal whether the account exists.
		respondJSON(w, http.StatusOK, ResetResponse{ExpiresIn: auth.DefaultResetTTL.String()})
		return
	}

	token, err := h.resets.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue reset token", err)
		return
	}
	respondJSON(w, http.StatusOK, ResetResponse{
		ResetToken: token,
		ExpiresIn:  auth.DefaultResetTTL.String(),
	})
}

// ConfirmReset handles POST /api/auth/reset-password.
func (h *AuthHandlers) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}

	userID, err := h.resets.Redeem(req.ResetToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired reset token", nil)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password", err)
		return
	}
	user.PasswordHash = hash

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user", err)
		return
	}

	h.logger.Info("password reset", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), UserID(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
