package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mapleai/maple/internal/chat"
	"github.com/mapleai/maple/internal/ratelimit"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

const maxMessageLength = 4000

// ChatHandlers serves the chat endpoints.
type ChatHandlers struct {
	orchestrator *chat.Orchestrator
	userWindow   *ratelimit.Window
	guestWindow  *ratelimit.Window
	hub          *EventHub
	guestMode    bool
	logger       *slog.Logger
}

func NewChatHandlers(orchestrator *chat.Orchestrator, userWindow, guestWindow *ratelimit.Window, hub *EventHub, guestMode bool, logger *slog.Logger) *ChatHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandlers{
		orchestrator: orchestrator,
		userWindow:   userWindow,
		guestWindow:  guestWindow,
		hub:          hub,
		guestMode:    guestMode,
		logger:       logger,
	}
}

// PostMessage handles POST /api/chat/message.
func (h *ChatHandlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, "message is required", nil)
		return
	}
	if len(message) > maxMessageLength {
		respondError(w, http.StatusBadRequest, "message too long", nil)
		return
	}

	if !h.userWindow.Allow(userID) {
		respondError(w, http.StatusTooManyRequests, "chat rate limit exceeded", nil)
		return
	}

	envelope, err := h.orchestrator.Process(r.Context(), userID, message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to process message", err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{Type: EventChatReply, UserID: userID, Data: envelope})
	}
	respondJSON(w, http.StatusOK, envelope)
}

// GuestChat handles POST /api/guest/chat. No auth, no persistence, tighter
// per-IP limits.
func (h *ChatHandlers) GuestChat(w http.ResponseWriter, r *http.Request) {
	if !h.guestMode {
		respondError(w, http.StatusForbidden, "guest mode is disabled", nil)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	if !h.guestWindow.Allow(clientIP(r)) {
		respondError(w, http.StatusTooManyRequests, "guest rate limit exceeded", nil)
		return
	}

	envelope, err := h.orchestrator.ProcessGuest(r.Context(), req.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to process message", err)
		return
	}
	respondJSON(w, http.StatusOK, envelope)
}

// GetHistory handles GET /api/chat/history.
func (h *ChatHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:  parseInt(r.URL.Query().Get("page"), 1),
		Limit: parseInt(r.URL.Query().Get("limit"), 20),
	}
	opts.Normalize()

	messages, err := h.orchestrator.History(r.Context(), UserID(r), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history", err)
		return
	}
	if messages == nil {
		messages = []*types.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, HistoryResponse{
		Messages: messages,
		Page:     opts.Page,
		Limit:    opts.Limit,
	})
}

// ClearHistory handles DELETE /api/chat/history.
func (h *ChatHandlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.ClearHistory(r.Context(), UserID(r)); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSuggestions handles GET /api/chat/suggestions.
func (h *ChatHandlers) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := h.orchestrator.Suggestions(r.Context(), UserID(r))
	respondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}
