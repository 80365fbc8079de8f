package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/FACorreiaa/go-nearby-places/app/logger"
	"github.com/FACorreiaa/go-nearby-places/app/observability/metrics"
	"github.com/FACorreiaa/go-nearby-places/app/tracer"
	"github.com/FACorreiaa/go-nearby-places/config"
	"github.com/FACorreiaa/go-nearby-places/internal/container"
	api "github.com/FACorreiaa/go-nearby-places/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	c, err := container.NewContainer(&cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies", slog.Any("error", err))
		os.Exit(1)
	}

	routerConfig := &api.Config{
		PlacesHandler:    c.PlacesHandler,
		LocationHandler:  c.LocationHandler,
		FavoritesHandler: c.FavoritesHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
