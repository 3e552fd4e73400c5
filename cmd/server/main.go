// biogen - LinkedIn bio generator server
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

	"github.com/ashureev/biogen/internal/api"
	"github.com/ashureev/biogen/internal/clipboard"
	"github.com/ashureev/biogen/internal/config"
	"github.com/ashureev/biogen/internal/generator"
	"github.com/ashureev/biogen/internal/identity"
	"github.com/ashureev/biogen/internal/middleware"
	"github.com/ashureev/biogen/internal/session"
	"github.com/ashureev/biogen/internal/stream"
	"github.com/ashureev/biogen/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "generator", cfg.Generator.URL)

	// Initialize dependencies.
	gen := generator.NewClient(cfg.Generator.URL,
		generator.WithTimeout(cfg.Generator.Timeout),
		generator.WithLogger(logger),
	)

	clip := clipboard.Disabled()
	if cfg.ClipboardEnabled && clipboard.Supported() {
		clip = clipboard.System()
	} else {
		slog.Warn("Clipboard disabled, copy requests will report a failure")
	}

	hub := stream.NewHub()
	sessions := session.NewManager(func(ownerID, tabID string, observer session.Observer) *session.Controller {
		return session.NewController(gen,
			session.WithClipboard(clip),
			session.WithObserver(observer),
			session.WithLogger(logger.With("owner_id", ownerID, "session_id", tabID)),
		)
	}, session.RealClock())
	sessions.OnChange(hub.Publish)
	defer sessions.Close()

	// Initialize handlers.
	baseHandler := api.NewHandler(sessions)
	sessionHandler := api.NewSessionHandler(baseHandler)
	healthHandler := api.NewHealthHandler(sessions, cfg.Generator.URL)
	wsHandler := stream.NewHandler(hub, sessions, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins(cfg)))

	// Public routes.
	healthHandler.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		sessionHandler.RegisterRoutes(r)
		r.Get("/ws/session", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: no WriteTimeout since /ws/session connections are long lived.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartSweeper(ctx, cfg.Session.TTL, cfg.Session.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)
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

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() || cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
