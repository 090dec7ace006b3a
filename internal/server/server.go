// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the wiring layer — the composition root where handlers,
// middleware, and routes come together. main.go builds the dependencies
// (database, token services, upstream clients) and hands them over; this
// package decides which URL patterns hit which handlers and how the
// server starts and stops.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/thinktank/internal/auth"
	"github.com/sakif/thinktank/internal/handler"
	"github.com/sakif/thinktank/internal/middleware"
	"github.com/sakif/thinktank/internal/repository/mongodb"
	"github.com/sakif/thinktank/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	Environment string // "development" or "production" — drives the CORS allowlist
}

// Deps carries everything main.go builds that the routes need.
type Deps struct {
	DB           *mongodb.DB
	AccessTokens *auth.TokenService
	Auth         *service.AuthService
	Portfolio    *service.PortfolioService
	Scraper      handler.ProfileScraper
}

// Server represents the HTTP server and all its dependencies.
// It owns the MongoDB connection: when the server shuts down, the
// connection pool is drained and closed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *mongodb.DB
}

// New creates a Server and wires every route.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     deps.DB,
	}
	s.setupRoutes(deps)
	return s
}

// setupRoutes configures middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS — each runs in the order added:
// RequestID → RealIP → CORS → Logger → Recoverer, then per-route auth.
func (s *Server) setupRoutes(deps Deps) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(cors.Handler(s.corsOptions()))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	authHandler := handler.NewAuthHandler(deps.Auth, s.logger)
	githubHandler := handler.NewGitHubHandler(deps.Portfolio, s.logger)
	linkedinHandler := handler.NewLinkedInHandler(deps.Scraper, s.logger)

	requireAuth := auth.RequireAuth(deps.AccessTokens, s.db, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/github", func(r chi.Router) {
			r.Get("/profile/{username}", githubHandler.Profile)
			r.Get("/repos/{username}", githubHandler.Repos)
			r.Get("/enriched/{username}", githubHandler.Enriched)
		})

		r.Post("/linkedin-scraper/profile", linkedinHandler.Scrape)
	})
}

// corsOptions builds the CORS policy: local dev frontends in development,
// a fixed allowlist in production. Credentials stay on because the
// frontend sends the bearer token with every request.
func (s *Server) corsOptions() cors.Options {
	origins := []string{"https://thinktank.sakif.dev"}
	if s.config.Environment != "production" {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// handleHealth answers GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"message":     "ThinkTank API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.config.Environment,
	})
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the MongoDB pool.
func (s *Server) Start() error {
	defer func() {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// The enriched-portfolio endpoint fans out to GitHub and the LLM;
		// a large account can legitimately take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("environment", s.config.Environment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
