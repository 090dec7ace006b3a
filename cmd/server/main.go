// Package main is the entry point for the ThinkTank API server.
//
// main's job is deliberately small: load configuration, build the
// dependency graph (database, token services, upstream clients), and
// hand everything to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/thinktank/internal/auth"
	"github.com/sakif/thinktank/internal/github"
	"github.com/sakif/thinktank/internal/linkedin"
	"github.com/sakif/thinktank/internal/llm"
	"github.com/sakif/thinktank/internal/repository/mongodb"
	"github.com/sakif/thinktank/internal/server"
	"github.com/sakif/thinktank/internal/service"
)

func main() {
	// .env is a development convenience; in production the variables come
	// from the real environment and the file simply doesn't exist.
	_ = godotenv.Load()

	environment := getenv("APP_ENV", "development")

	level := slog.LevelDebug
	if environment == "production" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// === DATABASE ===
	mongoURI := getenv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := getenv("MONGODB_DB", "thinktank")
	db, err := mongodb.New(mongoURI, dbName)
	if err != nil {
		logger.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", slog.String("database", dbName))

	// === AUTH ===
	// Two token services with two secrets: a leaked access secret must not
	// let anyone mint refresh tokens. Generate each with:
	//   openssl rand -hex 32
	accessSecret := os.Getenv("JWT_ACCESS_SECRET")
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if accessSecret == "" || refreshSecret == "" {
		logger.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must both be set")
		os.Exit(1)
	}
	accessTokens, err := auth.NewTokenService(accessSecret, auth.AccessTokenTTL)
	if err != nil {
		logger.Error("invalid access token secret", slog.String("error", err.Error()))
		os.Exit(1)
	}
	refreshTokens, err := auth.NewTokenService(refreshSecret, auth.RefreshTokenTTL)
	if err != nil {
		logger.Error("invalid refresh token secret", slog.String("error", err.Error()))
		os.Exit(1)
	}
	passwords := auth.NewPasswordService()

	// === UPSTREAM CLIENTS ===
	// GITHUB_TOKEN is optional: unauthenticated requests work but at a
	// 60/hour budget instead of 5000/hour.
	githubClient := github.NewClient(os.Getenv("GITHUB_TOKEN"), logger)

	// The LLM is optional too — without a key the analyzer falls back to
	// deterministic README heuristics.
	var generator llm.Generator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gen, err := llm.NewGeminiGenerator(context.Background(), apiKey)
		if err != nil {
			logger.Warn("Gemini client unavailable, using README heuristics",
				slog.String("error", err.Error()))
		} else {
			generator = gen
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, using README heuristics")
	}
	analyzer := llm.NewAnalyzer(generator, logger)

	scraper := linkedin.NewScraper(logger)

	// === SERVICES ===
	concurrency := 0
	if v := os.Getenv("ENRICH_CONCURRENCY"); v != "" {
		concurrency, err = strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid ENRICH_CONCURRENCY value", slog.String("value", v))
			os.Exit(1)
		}
	}
	authService := service.NewAuthService(db, accessTokens, refreshTokens, passwords, logger)
	portfolioService := service.NewPortfolioService(githubClient, analyzer, logger, concurrency)

	srv := server.New(
		server.Config{Port: port, Environment: environment},
		server.Deps{
			DB:           db,
			AccessTokens: accessTokens,
			Auth:         authService,
			Portfolio:    portfolioService,
			Scraper:      scraper,
		},
		logger,
	)

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
