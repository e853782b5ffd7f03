// Package main provides the entry point for the gotify-relay server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsrelay/gotify-relay/internal/config"
	"github.com/opsrelay/gotify-relay/internal/dedup"
	"github.com/opsrelay/gotify-relay/internal/logging"
	"github.com/opsrelay/gotify-relay/internal/metrics"
	"github.com/opsrelay/gotify-relay/internal/middleware"
	"github.com/opsrelay/gotify-relay/internal/notify"
	"github.com/opsrelay/gotify-relay/internal/relay"
	"github.com/opsrelay/gotify-relay/internal/webhook"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger("gotify-relay", cfg.LogLevel)
	if cfg.IsDevelopment() {
		logger = logging.NewPrettyLogger("gotify-relay", cfg.LogLevel)
	}

	if cfg.GotifyURL == "" {
		logger.Warn().Msg("GOTIFY_URL is not set; alert dispatch will fail until configured")
	}

	// The cache is constructed once here and injected into both the
	// pipeline and the sweep job; there is no ambient singleton.
	cache := dedup.NewCache()
	sweep := dedup.NewSweepJob(cache, dedup.SweepInterval, logger)
	sweep.Start()

	gotify := notify.NewClient(cfg.GotifyURL, logger)
	pipeline := relay.NewPipeline(cache, gotify, logger)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.PayloadLimitErrorHandler(logger))
	router.Use(middleware.PayloadLimit(cfg.WebhookMaxPayloadSize, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	metrics.RegisterMetricsEndpoint(router)

	webhookHandler := webhook.NewHandlerWithConfig(pipeline, logger, webhook.Config{
		Secret: cfg.WebhookSecret,
	})
	webhookHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("environment", cfg.Environment).
			Str("addr", srv.Addr).
			Str("alertEndpoint", "http://localhost:"+cfg.Port+"/alert").
			Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	sweep.Stop()

	logger.Info().Msg("server exited properly")
}
