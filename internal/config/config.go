// Package config provides configuration management for the Maple companion
// backend. It loads settings from environment variables with the MAPLE_
// prefix and provides sensible defaults for all options.
//
// User settings (companion name, voice) are persisted to the settings table
// in the database. LoadConfigFromDB reads from the database first and falls
// back to environment variables. SaveConfig writes user settings back.
package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the application.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	LLM       LLMConfig
	TTS       TTSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
	Persona   PersonaConfig
	Logging   LoggingConfig
	User      UserConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 8000)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	StorageEngine string // sqlite or postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // Postgres connection string for the memory store
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider             string // ollama, openai, anthropic (default: ollama)
	OllamaURL            string // Ollama API URL (default: http://localhost:11434)
	OllamaModel          string // Ollama model for replies (default: llama3.2:3b)
	OllamaEmbeddingModel string // Ollama model for embeddings (default: nomic-embed-text)
	OpenAIAPIKey         string
	OpenAIModel          string // default: gpt-4o-mini
	AnthropicAPIKey      string
	AnthropicModel       string // default: claude-haiku-4-5-20251001
}

// TTSConfig contains speech synthesis configuration.
type TTSConfig struct {
	Enabled bool   // Enable TTS endpoints (default: true)
	BaseURL string // Speech gateway URL (default: http://localhost:5050)
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	TokenSecret string        // HMAC secret for bearer tokens
	TokenTTL    time.Duration // Token lifetime (default: 24h)
	GuestMode   bool          // Allow unauthenticated guest chat (default: true)
}

// RateLimitConfig contains rate limiting settings.
type RateLimitConfig struct {
	GlobalRPS   float64       // Process-wide requests per second (default: 50)
	GlobalBurst int           // Process-wide burst (default: 100)
	ChatLimit   int           // Chat messages per user per window (default: 20)
	ChatWindow  time.Duration // Chat window length (default: 1m)
	GuestLimit  int           // Guest messages per IP per window (default: 5)
}

// BackupConfig contains backup configuration.
type BackupConfig struct {
	Enabled          bool   // Enable automatic backups (default: false)
	Interval         string // Backup interval duration (default: 24h)
	Path             string // Backup directory (default: ./backups)
	Verify           bool   // Verify backups after creation (default: true)
	RetentionHourly  int    // Hourly backups to keep (default: 24)
	RetentionDaily   int    // Daily backups to keep (default: 7)
	RetentionWeekly  int    // Weekly backups to keep (default: 4)
	RetentionMonthly int    // Monthly backups to keep (default: 12)
}

// PersonaConfig selects the active persona pack.
type PersonaConfig struct {
	Dir    string // Persona pack directory (default: ./personas)
	Active string // Active pack name (default: maple)
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level string // debug, info, warn, error (default: info)
	File  string // JSON log file path; empty disables file logging
}

// UserConfig contains user-facing settings persisted in the settings table.
type UserConfig struct {
	// CompanionName is the display name for the companion.
	// Env var: MAPLE_COMPANION_NAME, database key: companion_name.
	CompanionName string

	// Voice is the default synthesis voice.
	// Env var: MAPLE_VOICE, database key: voice.
	Voice string
}

// LoadConfig loads configuration from environment variables with defaults.
// All environment variables use the MAPLE_ prefix. Use LoadConfigFromDB to
// also read persisted user settings.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFromDB loads configuration from both environment variables and
// the database. Database values take precedence for user settings.
func LoadConfigFromDB(db *sql.DB) (*Config, error) {
	if db == nil {
		return nil, errors.New("config: database connection is required")
	}

	cfg := buildBaseConfig()

	for _, s := range []struct {
		key string
		dst *string
	}{
		{"companion_name", &cfg.User.CompanionName},
		{"voice", &cfg.User.Voice},
	} {
		value, err := getSetting(db, s.key)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("config: failed to load %s from database: %w", s.key, err)
		}
		if value != "" {
			*s.dst = value
		}
	}

	return cfg, nil
}

// SaveConfig persists user settings to the settings table with upsert
// semantics so they survive restarts.
func (c *Config) SaveConfig(db *sql.DB) error {
	if db == nil {
		return errors.New("config: database connection is required")
	}

	if err := setSetting(db, "companion_name", c.User.CompanionName); err != nil {
		return fmt.Errorf("config: failed to save companion_name: %w", err)
	}
	if err := setSetting(db, "voice", c.User.Voice); err != nil {
		return fmt.Errorf("config: failed to save voice: %w", err)
	}

	return nil
}

// getSetting retrieves a single global setting value by key.
// Returns sql.ErrNoRows if absent.
func getSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE scope = '' AND key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// setSetting upserts a global key-value setting.
func setSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (scope, key, value)
		VALUES ('', ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("MAPLE_PORT", 8000),
			Host: getEnv("MAPLE_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("MAPLE_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("MAPLE_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("MAPLE_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			Provider:             getEnv("MAPLE_LLM_PROVIDER", "ollama"),
			OllamaURL:            getEnv("MAPLE_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("MAPLE_OLLAMA_MODEL", "llama3.2:3b"),
			OllamaEmbeddingModel: getEnv("MAPLE_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIAPIKey:         getEnv("MAPLE_OPENAI_API_KEY", ""),
			OpenAIModel:          getEnv("MAPLE_OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicAPIKey:      getEnv("MAPLE_ANTHROPIC_API_KEY", ""),
			AnthropicModel:       getEnv("MAPLE_ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		},
		TTS: TTSConfig{
			Enabled: getEnvBool("MAPLE_TTS_ENABLED", true),
			BaseURL: getEnv("MAPLE_TTS_URL", "http://localhost:5050"),
		},
		Security: SecurityConfig{
			TokenSecret: getEnv("MAPLE_TOKEN_SECRET", ""),
			TokenTTL:    getEnvDuration("MAPLE_TOKEN_TTL", 24*time.Hour),
			GuestMode:   getEnvBool("MAPLE_GUEST_MODE", true),
		},
		RateLimit: RateLimitConfig{
			GlobalRPS:   float64(getEnvInt("MAPLE_RATE_GLOBAL_RPS", 50)),
			GlobalBurst: getEnvInt("MAPLE_RATE_GLOBAL_BURST", 100),
			ChatLimit:   getEnvInt("MAPLE_RATE_CHAT_LIMIT", 20),
			ChatWindow:  getEnvDuration("MAPLE_RATE_CHAT_WINDOW", time.Minute),
			GuestLimit:  getEnvInt("MAPLE_RATE_GUEST_LIMIT", 5),
		},
		Backup: BackupConfig{
			Enabled:          getEnvBool("MAPLE_BACKUP_ENABLED", false),
			Interval:         getEnv("MAPLE_BACKUP_INTERVAL", "24h"),
			Path:             getEnv("MAPLE_BACKUP_PATH", "./backups"),
			Verify:           getEnvBool("MAPLE_BACKUP_VERIFY", true),
			RetentionHourly:  getEnvInt("MAPLE_BACKUP_RETENTION_HOURLY", 24),
			RetentionDaily:   getEnvInt("MAPLE_BACKUP_RETENTION_DAILY", 7),
			RetentionWeekly:  getEnvInt("MAPLE_BACKUP_RETENTION_WEEKLY", 4),
			RetentionMonthly: getEnvInt("MAPLE_BACKUP_RETENTION_MONTHLY", 12),
		},
		Persona: PersonaConfig{
			Dir:    getEnv("MAPLE_PERSONA_DIR", "./personas"),
			Active: getEnv("MAPLE_PERSONA", "maple"),
		},
		Logging: LoggingConfig{
			Level: getEnv("MAPLE_LOG_LEVEL", "info"),
			File:  getEnv("MAPLE_LOG_FILE", ""),
		},
		User: UserConfig{
			CompanionName: getEnv("MAPLE_COMPANION_NAME", "Maple"),
			Voice:         getEnv("MAPLE_VOICE", "maple_default"),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value, also on parse failure.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. Recognizes true/1/yes and false/0/no, case-insensitive.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a
// default value, also on parse failure.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
