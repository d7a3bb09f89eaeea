package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/mapleai/maple/internal/backup"
	"github.com/mapleai/maple/internal/config"
	"github.com/mapleai/maple/internal/storage"
)

// SystemHandlers serves health, stats, and user configuration.
type SystemHandlers struct {
	store   storage.Store
	db      *sql.DB
	cfg     *config.Config
	backups *backup.Service
	version string
}

func NewSystemHandlers(store storage.Store, db *sql.DB, cfg *config.Config, backups *backup.Service, version string) *SystemHandlers {
	return &SystemHandlers{store: store, db: db, cfg: cfg, backups: backups, version: version}
}

// Health handles GET /api/health. Unauthenticated; used by monitoring.
func (h *SystemHandlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
	}
	if h.backups != nil {
		if health, err := h.backups.HealthCheck(); err == nil {
			resp["backup"] = health
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/stats.
func (h *SystemHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to collect stats", err)
		return
	}
	respondJSON(w, http.StatusOK, StatsResponse{
		Users:      stats.Users,
		Messages:   stats.Messages,
		Companions: stats.Companions,
		Memories:   stats.Memories,
	})
}

// GetUserConfig handles GET /api/config/user.
func (h *SystemHandlers) GetUserConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UserConfigResponse{
		CompanionName: h.cfg.User.CompanionName,
		Voice:         h.cfg.User.Voice,
	})
}

// PostUserConfig handles POST /api/config/user. Settings persist in the
// database and take effect immediately.
func (h *SystemHandlers) PostUserConfig(w http.ResponseWriter, r *http.Request) {
	var req UserConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.CompanionName != "" {
		h.cfg.User.CompanionName = req.CompanionName
	}
	if req.Voice != "" {
		h.cfg.User.Voice = req.Voice
	}

	if h.db != nil {
		if err := h.cfg.SaveConfig(h.db); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to persist settings", err)
			return
		}
	}
	respondJSON(w, http.StatusOK, UserConfigResponse{
		CompanionName: h.cfg.User.CompanionName,
		Voice:         h.cfg.User.Voice,
	})
}
