// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/core/shelf"
	"github.com/Aischii/mangaWebsite/internal/platform/config"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/middleware"
	"github.com/Aischii/mangaWebsite/internal/social"
	"github.com/Aischii/mangaWebsite/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all dependencies are healthy.
	Readiness http.HandlerFunc

	// Media serves stored covers, pages and avatars.
	Media http.Handler

	// Auth handles registration, login, logout and the profile.
	Auth *auth.Handler

	// Library serves the public catalog pages.
	Library *library.Handler

	// Shelf handles bookmarks and reading progress.
	Shelf *shelf.Handler

	// Social handles comments and reactions.
	Social *social.Handler

	// Content handles admin uploads and edits.
	Content *content.Handler
}

// Identity groups the collaborators the authentication middleware needs.
type Identity struct {
	Verifier    middleware.TokenVerifier
	Sessions    middleware.SessionChecker
	Preferences middleware.PreferenceLookup
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, identity Identity, h Handlers) *Server {
	r := NewRouter(context, cfg, log, identity, h)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter builds the routing tree. It is separate from [NewServer] so tests
// can drive it through httptest.
func NewRouter(context context.Context, cfg *config.Config, log *slog.Logger, identity Identity, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Authenticate(identity.Verifier, identity.Sessions))
	r.Use(middleware.ViewerPreferences(identity.Preferences))

	// # Infrastructure Endpoints
	// Unauthenticated health checks for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	if h.Media != nil {
		r.Handle(cfg.MediaURLPrefix+"/*", http.StripPrefix(cfg.MediaURLPrefix, h.Media))
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		api.Route("/me", func(me chi.Router) {
			h.Auth.RegisterProfileRoutes(me)
			me.With(middleware.RequireAuth).Get("/bookmarks", h.Shelf.ListBookmarks)
		})

		api.Mount("/admin", h.Content.Routes())

		api.Mount("/shelf", h.Shelf.Routes())
		api.Mount("/social", h.Social.Routes())
		api.Mount("/", h.Library.Routes())
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
