// Package server wires the HTTP routes and manages the listener lifecycle.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mapleai/maple/internal/auth"
	"github.com/mapleai/maple/internal/backup"
	"github.com/mapleai/maple/internal/chat"
	"github.com/mapleai/maple/internal/companion"
	"github.com/mapleai/maple/internal/config"
	"github.com/mapleai/maple/internal/ratelimit"
	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/internal/tts"
	"github.com/mapleai/maple/web/handlers"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Deps are the domain services the routes need. Backups and Synth may be nil
// when the corresponding features are disabled.
type Deps struct {
	Store        storage.Store
	DB           *sql.DB
	Engine       *companion.Engine
	Orchestrator *chat.Orchestrator
	Tokens       *auth.TokenIssuer
	Resets       *auth.ResetTokens
	Synth        tts.Synthesizer
	Backups      *backup.Service
	Logger       *slog.Logger
}

// Start builds the router and begins listening. It returns the bound address
// (useful with port 0 in tests) and the event hub for broadcasting companion
// events. Shutdown happens when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, deps Deps) (string, *handlers.EventHub, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hub := handlers.NewEventHub([]string{
		fmt.Sprintf("localhost:%d", cfg.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port),
	}, logger)
	go hub.Run()

	userWindow := ratelimit.NewWindow(cfg.RateLimit.ChatLimit, cfg.RateLimit.ChatWindow)
	guestWindow := ratelimit.NewWindow(cfg.RateLimit.GuestLimit, cfg.RateLimit.ChatWindow)

	authHandlers := handlers.NewAuthHandlers(deps.Store, deps.Tokens, deps.Resets, logger)
	chatHandlers := handlers.NewChatHandlers(deps.Orchestrator, userWindow, guestWindow, hub, cfg.Security.GuestMode, logger)
	companionHandlers := handlers.NewCompanionHandlers(deps.Engine, hub)
	systemHandlers := handlers.NewSystemHandlers(deps.Store, deps.DB, cfg, deps.Backups, Version)

	// Authenticated API surface.
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/auth/me", authHandlers.Me)
	apiMux.HandleFunc("POST /api/chat/message", chatHandlers.PostMessage)
	apiMux.HandleFunc("GET /api/chat/history", chatHandlers.GetHistory)
	apiMux.HandleFunc("DELETE /api/chat/history", chatHandlers.ClearHistory)
	apiMux.HandleFunc("GET /api/chat/suggestions", chatHandlers.GetSuggestions)
	apiMux.HandleFunc("GET /api/companion/state", companionHandlers.GetState)
	apiMux.HandleFunc("POST /api/companion/interact", companionHandlers.PostInteract)
	apiMux.HandleFunc("GET /api/stats", systemHandlers.Stats)
	apiMux.HandleFunc("GET /api/config/user", systemHandlers.GetUserConfig)
	apiMux.HandleFunc("POST /api/config/user", systemHandlers.PostUserConfig)

	if cfg.TTS.Enabled && deps.Synth != nil {
		ttsHandlers := handlers.NewTTSHandlers(deps.Synth, deps.Engine, logger)
		apiMux.HandleFunc("POST /api/tts/synthesize", ttsHandlers.Synthesize)
		apiMux.HandleFunc("GET /api/tts/voices", ttsHandlers.Voices)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", handlers.RequireAuth(apiMux, deps.Tokens))

	// Unauthenticated surface: health, auth bootstrap, guest chat, events.
	mux.HandleFunc("GET /api/health", systemHandlers.Health)
	mux.HandleFunc("POST /api/auth/register", authHandlers.Register)
	mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
	mux.HandleFunc("POST /api/auth/reset-token", authHandlers.RequestReset)
	mux.HandleFunc("POST /api/auth/reset-password", authHandlers.ConfirmReset)
	mux.HandleFunc("POST /api/guest/chat", chatHandlers.GuestChat)
	mux.Handle("/ws", hub)

	globalLimiter := handlers.NewRateLimiter(cfg.RateLimit.GlobalRPS, cfg.RateLimit.GlobalBurst)
	handler := handlers.RateLimitMiddleware(mux, globalLimiter)
	handler = handlers.SecurityHeaders(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		hub.Stop()
	}()

	logger.Info("server listening", "addr", actualAddr)
	return actualAddr, hub, nil
}
