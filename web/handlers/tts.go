package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/internal/tts"
	"github.com/mapleai/maple/pkg/types"
)

// TTSHandlers serves speech synthesis. The companion's current mood nudges
// the rate and pitch of the output.
type TTSHandlers struct {
	synth  tts.Synthesizer
	engine *companion.Engine
	logger *slog.Logger
}

func NewTTSHandlers(synth tts.Synthesizer, engine *companion.Engine, logger *slog.Logger) *TTSHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &TTSHandlers{synth: synth, engine: engine, logger: logger}
}

// Synthesize handles POST /api/tts/synthesize and streams the audio back.
func (h *TTSHandlers) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required", nil)
		return
	}

	mood := types.MoodNeutral
	if state, err := h.engine.State(r.Context(), UserID(r)); err == nil {
		mood = state.Mood
	}

	settings := types.DefaultVoiceSettings()
	if req.Voice != "" {
		settings.Voice = req.Voice
	}
	if req.Speed > 0 {
		settings.Speed = req.Speed
	}
	if req.Pitch > 0 {
		settings.Pitch = req.Pitch
	}
	voice, speed, pitch := tts.SettingsFor(&settings, mood)

	audio, mime, err := h.synth.Synthesize(r.Context(), req.Text, voice, speed, pitch)
	if err != nil {
		respondError(w, http.StatusBadGateway, "synthesis failed", err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.logger.Warn("failed to write audio response", "error", err)
	}
}

// Voices handles GET /api/tts/voices.
func (h *TTSHandlers) Voices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.synth.Voices(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to list voices", err)
		return
	}
	respondJSON(w, http.StatusOK, voices)
}
