package types

import "time"

// User is a registered account. PasswordHash never leaves the storage layer
// in API responses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// VoiceSettings are the user's TTS preferences.
type VoiceSettings struct {
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
	Pitch float64 `json:"pitch"`
}

// DefaultVoiceSettings returns the voice preferences for a new user.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Voice: "maple_default",
		Speed: 1.0,
		Pitch: 1.0,
	}
}
