// Package tts synthesizes companion speech through an edge-style HTTP
// speech service, adjusting rate and pitch for the companion's mood.
package tts

import (
	"context"

	"github.com/mapleai/maple/pkg/types"
)

// Synthesizer converts reply text to audio bytes.
type Synthesizer interface {
	// Synthesize renders text with the given voice, speed and pitch
	// multipliers (1.0 is unmodified). Returns the audio payload and its
	// MIME type.
	Synthesize(ctx context.Context, text, voice string, speed, pitch float64) ([]byte, string, error)

	// Voices lists the voices the provider offers.
	Voices(ctx context.Context) ([]Voice, error)
}

// Voice describes one available synthesis voice.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Locale string `json:"locale"`
}

// MoodAdjust scales speed and pitch for the companion's mood: excited speech
// speeds up slightly, sleepy speech slows down.
func MoodAdjust(mood types.Mood, speed, pitch float64) (float64, float64) {
	switch mood {
	case types.MoodExcited, types.MoodEcstatic, types.MoodEnergetic:
		return speed * 1.1, pitch * 1.05
	case types.MoodSleepy:
		return speed * 0.9, pitch * 0.95
	default:
		return speed, pitch
	}
}

// SettingsFor resolves the effective voice settings for a synthesis request:
// the user's saved settings (or defaults) with the mood adjustment applied.
func SettingsFor(settings *types.VoiceSettings, mood types.Mood) (string, float64, float64) {
	if settings == nil {
		def := types.DefaultVoiceSettings()
		settings = &def
	}
	speed, pitch := MoodAdjust(mood, settings.Speed, settings.Pitch)
	return settings.Voice, speed, pitch
}
