// Package main is the entry point for the inkwell blog server.
//
// Its job is config and wiring only: read environment variables, build the
// logger, hand everything to internal/server. All actual logic lives in the
// imported packages.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/inkwell-blog/inkwell/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
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

	templateDir, _ := filepath.Abs("web/templates")
	if envDir := os.Getenv("TEMPLATE_DIR"); envDir != "" {
		templateDir = envDir
	}
	staticDir, _ := filepath.Abs("web/static")
	if envDir := os.Getenv("STATIC_DIR"); envDir != "" {
		staticDir = envDir
	}

	// DB_DRIVER selects the backend. sqlite is the default and needs a file
	// path; postgres needs DATABASE_URL.
	dbDriver := os.Getenv("DB_DRIVER")
	databaseURL := os.Getenv("DATABASE_URL")

	dbPath := "data/inkwell.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if dbDriver == "" || dbDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", filepath.Dir(dbPath)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// SESSION_SECRET signs the session cookie. Generate one with:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		logger.Error("SESSION_SECRET not set")
		os.Exit(1)
	}

	sessionTTL := 7 * 24 * time.Hour
	if envTTL := os.Getenv("SESSION_TTL"); envTTL != "" {
		ttl, err := time.ParseDuration(envTTL)
		if err != nil {
			logger.Error("invalid SESSION_TTL value", slog.String("value", envTTL))
			os.Exit(1)
		}
		sessionTTL = ttl
	}

	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	cfg := server.Config{
		Port:               port,
		TemplateDir:        templateDir,
		StaticDir:          staticDir,
		DBDriver:           dbDriver,
		DBPath:             dbPath,
		DatabaseURL:        databaseURL,
		SessionSecret:      sessionSecret,
		SessionTTL:         sessionTTL,
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  githubCallbackURL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
