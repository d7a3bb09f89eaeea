package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/pkg/types"
)

// CompanionHandlers serves companion state and interactions.
type CompanionHandlers struct {
	engine *companion.Engine
	hub    *EventHub
}

func NewCompanionHandlers(engine *companion.Engine, hub *EventHub) *CompanionHandlers {
	return &CompanionHandlers{engine: engine, hub: hub}
}

// GetState handles GET /api/companion/state. Reading the state applies any
// pending decay, so the response is always current.
func (h *CompanionHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.State(r.Context(), UserID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load companion state", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// PostInteract handles POST /api/companion/interact.
func (h *CompanionHandlers) PostInteract(w http.ResponseWriter, r *http.Request) {
	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	userID := UserID(r)
	state, err := h.engine.Interact(r.Context(), userID, types.Action(req.Action))
	if err != nil {
		if errors.Is(err, companion.ErrInvalidAction) {
			respondError(w, http.StatusBadRequest, "unknown action", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "interaction failed", err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(Event{Type: EventCompanionUpdate, UserID: userID, Data: state})
	}
	respondJSON(w, http.StatusOK, state)
}
