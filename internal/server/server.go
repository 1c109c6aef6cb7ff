// Package server wires the application together: storage backend, services,
// handlers, middleware, and routes, plus the HTTP listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/handler"
	"github.com/inkwell-blog/inkwell/internal/metrics"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/internal/repository/postgres"
	"github.com/inkwell-blog/inkwell/internal/repository/sqlite"
	"github.com/inkwell-blog/inkwell/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string

	// DBDriver selects the storage backend: "sqlite" (default) or
	// "postgres". DBPath feeds sqlite, DatabaseURL feeds postgres.
	DBDriver    string
	DBPath      string
	DatabaseURL string

	SessionSecret string
	SessionTTL    time.Duration

	// GitHub OAuth is optional; the routes only exist when a client ID is
	// configured.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and everything it depends on. The store is closed
// during graceful shutdown.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	store   repository.Store
	authSvc *service.AuthService
}

// New assembles the dependency graph: store → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.SessionSecret)
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(tokens); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func openStore(cfg Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case "", "sqlite":
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, nil
	case "postgres":
		db, err := postgres.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown DB driver %q", cfg.DBDriver)
	}
}

func (s *Server) setupRoutes(tokens *auth.TokenService) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	// Rewrites form POSTs carrying _method=PUT/DELETE before routing.
	s.router.Use(middleware.MethodOverride)
	// Resolves the session cookie into an identity once per request.
	s.router.Use(auth.ResolveSession(tokens, s.store.Sessions(), s.store.Users()))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	registry := metrics.NewRegistry()
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	passwords := auth.NewPasswordService()
	s.authSvc = service.NewAuthService(
		s.store.Users(), s.store.Sessions(), passwords, tokens,
		s.config.SessionTTL, s.logger,
	)
	postSvc := service.NewPostService(s.store.Posts(), s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(s.authSvc, github, render, s.config.SessionTTL, s.logger)
	postHandler := handler.NewPostHandler(postSvc, render, s.logger)

	s.router.Get("/", postHandler.HandleHome)
	s.router.Get("/login", authHandler.ShowLogin)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/register", authHandler.ShowRegister)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/logout", authHandler.HandleLogout)

	if authHandler.GitHubEnabled() {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// Everything that touches posts requires a resolved identity; anonymous
	// requests are redirected to /login by the guard.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/my-posts", postHandler.HandleList)
		r.Get("/posts/new", postHandler.ShowNew)
		r.Post("/posts", postHandler.HandleCreate)
		r.Get("/posts/{id}", postHandler.HandleShow)
		r.Get("/posts/{id}/edit", postHandler.ShowEdit)
		r.Put("/posts/{id}", postHandler.HandleUpdate)
		r.Delete("/posts/{id}", postHandler.HandleDelete)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())
		render.NotFound(w, user)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Expired sessions are harmless (the resolver checks expiry) but they
	// accumulate; sweep them on start and hourly after that.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.sweepSessions(sweepCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("driver", s.config.DBDriver),
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

func (s *Server) sweepSessions(ctx context.Context) {
	if err := s.authSvc.SweepExpiredSessions(ctx); err != nil {
		s.logger.Warn("session sweep failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.authSvc.SweepExpiredSessions(ctx); err != nil {
				s.logger.Warn("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
