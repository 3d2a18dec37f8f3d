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

	"github.com/UnknownOlympus/mapmarker/internal/config"
	"github.com/UnknownOlympus/mapmarker/internal/geocoding"
	"github.com/UnknownOlympus/mapmarker/internal/handler"
	"github.com/UnknownOlympus/mapmarker/internal/metrics"
	"github.com/UnknownOlympus/mapmarker/internal/models"
	"github.com/UnknownOlympus/mapmarker/internal/repository"
	"github.com/UnknownOlympus/mapmarker/internal/sanitize"
	"github.com/UnknownOlympus/mapmarker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Create geocoding provider using factory pattern based on configuration
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:    geocoding.ProviderType(cfg.Provider.Type),
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Timeout: cfg.Provider.Timeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	logger.InfoContext(ctx, "Geocoding provider initialized",
		"type", cfg.Provider.Type, "network_enabled", cfg.NetworkEnabled)

	geocoder := service.NewGeocoder(
		logger,
		geoProvider,
		cfg.Provider.Type, // Provider name for metrics
		appMetrics,
		service.NewLogReporter(logger),
		service.StaticGate(cfg.NetworkEnabled),
	)

	// Every marker cleans its text fields with the configured length limit.
	sanitizer := sanitize.New(cfg.SanitizeMaxLength)
	repo := repository.NewRepository(
		func() *models.MapMarker { return models.NewMapMarkerWithSanitizer(sanitizer) },
		appMetrics,
		logger,
	)

	server := newServer(logger, reg, handler.NewMarkerHandler(repo, geocoder, logger), cfg)

	go func() {
		logger.InfoContext(ctx, "Starting server", "port", cfg.Port)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Server failed", "error", errServe)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownTimeout := 10 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// newServer builds the HTTP server exposing the marker API, health check and metrics endpoints.
//
// Parameters:
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - markers: The marker API handler.
// - cfg: Application configuration (port, environment and provider details).
func newServer(
	log *slog.Logger,
	reg *prometheus.Registry,
	markers *handler.MarkerHandler,
	cfg *config.Config,
) *http.Server {
	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		log.DebugContext(c.Request.Context(), "Performing health checks...")
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"provider":        cfg.Provider.Type,
			"network_enabled": cfg.NetworkEnabled,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	markers.Register(router.Group("/api/v1"))

	readTimeout := 5
	// Geocoding waits on the provider, so writes get the provider timeout on top.
	writeTimeout := 10*time.Second + cfg.Provider.Timeout

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: writeTimeout,
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
