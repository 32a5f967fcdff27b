package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/ecofit/internal/ai"
	"alcyxob/ecofit/internal/api"
	"alcyxob/ecofit/internal/config"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/observability"
	"alcyxob/ecofit/internal/repository/backend"
	"alcyxob/ecofit/internal/service"
	"alcyxob/ecofit/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title EcoFit API
// @version 1.0
// @description Coaching backend for professionals and their clients: invitations, diets, workouts, sessions and schedules.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         observability.LogFormat(cfg.App.LogFormat),
		ServiceName:    "ecofit",
		ServiceVersion: cfg.App.Version,
	})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	logger.Info("starting ecofit server", "env", cfg.App.Env, "database", cfg.Database.Driver)

	// --- Database ---
	store, err := backend.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// --- Storage ---
	var files storage.FileStorage
	if cfg.S3.Enabled() {
		files, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.Warn("s3.bucket_name not set, exercise media disabled")
	}

	// --- Mail ---
	mailer, err := mail.New(ctx, cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("initialize mailer: %w", err)
	}

	// --- AI ---
	var drafter *ai.Drafter
	if cfg.AI.Enabled() {
		drafter = ai.NewDrafter(ai.NewOpenAIClient(ai.Config{
			APIKey:      cfg.AI.APIKey,
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}), logger)
	} else {
		logger.Warn("ai.api_key not set, AI drafts disabled")
	}

	// --- Services ---
	cal := service.Calendar{Now: time.Now, Location: cfg.Location()}
	auth := service.NewAuthService(store.Profiles, mailer, service.AuthConfig{
		Secret:          cfg.JWT.Secret,
		Expiration:      cfg.JWT.Expiration,
		ResetExpiration: cfg.JWT.ResetExpiration,
		BaseURL:         cfg.App.BaseURL,
	}, cal, logger)
	plans := service.NewPlanService(store, files, cal, logger)
	services := api.Services{
		Auth:         auth,
		Profiles:     service.NewProfileService(store.Profiles, cal),
		Invitations:  service.NewInvitationService(store, auth, mailer, cfg.Invitations.TTL, cfg.App.BaseURL, cal, logger),
		Plans:        plans,
		PlanRequests: service.NewPlanRequestService(store, cal, logger),
		Progress:     service.NewProgressService(store, cal, logger),
		Schedules:    service.NewScheduleService(store, cal, logger),
		Media:        service.NewMediaService(files, plans, cfg.S3.PresignExpiry, cal),
		Drafts:       service.NewDraftService(drafter),
	}

	// --- Gin ---
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	api.SetupRoutes(router, services, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
