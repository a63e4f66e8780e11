// GTM Insight Portal server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/gtm-insight/internal/agent"
	"github.com/ashureev/gtm-insight/internal/api"
	"github.com/ashureev/gtm-insight/internal/config"
	"github.com/ashureev/gtm-insight/internal/gate"
	"github.com/ashureev/gtm-insight/internal/identity"
	"github.com/ashureev/gtm-insight/internal/portal"
	"github.com/ashureev/gtm-insight/internal/prompt"
	"github.com/ashureev/gtm-insight/internal/report"
	"github.com/ashureev/gtm-insight/internal/store"
	"github.com/ashureev/gtm-insight/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"model", cfg.Model.Name,
		"gate", cfg.GateEnabled(),
	)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// A missing key is not fatal: the portal starts in "not connected" mode.
	var generator agent.Generator
	if cfg.Connected() {
		g, err := agent.NewGenAIGenerator(context.Background(), agent.GenAIConfig{
			APIKey:  cfg.Model.APIKey,
			BaseURL: cfg.Model.BaseURL,
		})
		if err != nil {
			slog.Warn("Failed to create model client, analysis will be disabled", "error", err)
		} else {
			generator = g
		}
	}
	if generator == nil {
		slog.Info("Model service not connected (GOOGLE_API_KEY not set or client failed)")
	}

	builder := prompt.NewBuilder(cfg.Model.Name, cfg.Model.Language, prompt.Params{
		Temperature:     cfg.Model.Temperature,
		MaxOutputTokens: cfg.Model.MaxOutputTokens,
	}, cfg.Model.EnableSearch)

	p := portal.New(
		gate.New(cfg.AccessPassword),
		builder,
		agent.NewService(generator, logger),
		report.NewRenderer(),
		logger,
	)

	pages, err := web.NewRenderer()
	if err != nil {
		slog.Error("Failed to parse templates", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(repo, p, pages)
	healthHandler := api.NewHealthHandler(repo, generator != nil)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	// Public routes.
	healthHandler.RegisterHealth(r)
	r.Handle("/static/*", web.StaticHandler())

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, cfg.IsDevelopment()))
		handler.RegisterRoutes(r)
	})

	// Generate requests block on the model call, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return store.StartTTLWorker(gctx, repo, cfg.SessionTTL, cfg.SweepInterval)
	})

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
