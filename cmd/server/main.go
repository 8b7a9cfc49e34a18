// callpilot - sales assistant workspace server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/callpilot/internal/ai"
	"github.com/ashureev/callpilot/internal/api"
	"github.com/ashureev/callpilot/internal/config"
	"github.com/ashureev/callpilot/internal/events"
	"github.com/ashureev/callpilot/internal/identity"
	"github.com/ashureev/callpilot/internal/middleware"
	"github.com/ashureev/callpilot/internal/rpc"
	"github.com/ashureev/callpilot/internal/seed"
	"github.com/ashureev/callpilot/internal/store"
	"github.com/ashureev/callpilot/internal/workflow"
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

	if err := run(cfg, logger); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped successfully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	slog.Info("Starting server", "port", cfg.Port, "grpc_port", cfg.GRPCPort, "dev", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	if err := repo.Ping(ctx); err != nil {
		return err
	}
	slog.Info("Database connected")

	data, err := loadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}
	slog.Info("Seed data loaded", "contacts", len(data.Contacts), "quick_remarks", len(data.Settings.QuickRemarks))

	conversationLog, err := ai.NewConversationLogger(ai.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conversationLog.Close(); closeErr != nil {
			slog.Error("Failed to close conversation log", "error", closeErr)
		}
	}()

	var model ai.Model
	if cfg.AI.APIKey != "" {
		m, err := ai.NewGenAIModel(ctx, cfg.AI.APIKey)
		if err != nil {
			slog.Warn("Failed to initialize GenAI client, AI features will answer with fallbacks", "error", err)
		} else {
			model = m
		}
	}
	if model == nil {
		slog.Info("AI features disabled (GOOGLE_AI_API_KEY not set)")
	}
	gateway := ai.NewGateway(model, ai.Config{
		TextModel:   cfg.AI.TextModel,
		VisionModel: cfg.AI.VisionModel,
	}, conversationLog)

	issuer, err := identity.NewIssuer(cfg.JWTSecret, cfg.AuthTokenTTL)
	if err != nil {
		return err
	}

	hub := events.NewHub(events.DefaultBuffer)
	defer hub.CloseAll()
	registry := workflow.NewRegistry(gateway, hub, data)
	limiter := api.NewRateLimiter(cfg.AI.RateLimitRequests, cfg.AI.RateLimitWindow)

	// Initialize handlers.
	authHandler := identity.NewHandler(repo, issuer, cfg.IsDevelopment())
	apiHandler := api.NewHandler(registry, limiter)
	healthHandler := api.NewHealthHandler(repo, registry, gateway.Configured())
	wsHandler := events.NewHandler(hub, cfg.CORSOrigins, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(identity.Authenticate(repo, issuer))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBody(cfg.MaxBodyBytes))

		// Public routes.
		healthHandler.RegisterHealth(r)
		r.Get("/routes", api.Routes)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireUser)
			apiHandler.RegisterRoutes(r)
		})
	})

	// WebSocket endpoint.
	r.With(identity.RequireUser).Get("/ws/events", wsHandler.ServeHTTP)

	// WebSocket streams need no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	grpcSrv := rpc.NewServer(healthHandler, 15*time.Second, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return grpcSrv.Serve(gctx, grpcLis)
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

		// Close event streams first so Shutdown is not held open by them.
		hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadSeed(path string) (seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.Load(path)
}
