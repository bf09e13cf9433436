package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sponsorweb/internal/backend"
	"sponsorweb/internal/config"
	"sponsorweb/internal/draft"
	"sponsorweb/internal/httpmiddleware"
	"sponsorweb/internal/media"
	"sponsorweb/internal/metrics"
	"sponsorweb/internal/notify"
	"sponsorweb/internal/session"
	"sponsorweb/internal/store"
	"sponsorweb/internal/web"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sponsorweb").Logger()
	if cfg.Env == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg config.App, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kv store.KV
	var redisStore *store.Redis
	if cfg.StoreBackend == "redis" {
		redisStore = store.NewRedis(cfg.RedisAddr)
		kv = redisStore
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis store")
	} else {
		kv = store.NewMemory()
		logger.Info().Msg("using in-memory store")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	client := backend.New(cfg.APIBaseURL)
	client.Observe = func(outcome string, seconds float64) {
		m.BackendRequests.WithLabelValues(outcome).Inc()
		m.BackendLatency.Observe(seconds)
	}

	mediaBase := cfg.MediaOrigin
	if mediaBase == "" {
		mediaBase = cfg.APIBaseURL
	}
	resolver := media.NewResolver(mediaBase)

	drafts := draft.NewStore(kv, cfg.DraftTTL)

	poller := notify.New(func(ctx context.Context, token string) ([]backend.Notification, error) {
		return client.WithToken(token).ListNotifications(ctx)
	}, kv, cfg.PollInterval, logger)
	poller.OnTick = m.PollTicks.Inc
	go poller.Run(ctx)

	h := web.New(client, resolver, drafts, poller, m, logger, cfg.UploadConcurrency)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).Gin())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		healthy := true
		if redisStore != nil {
			healthy = redisStore.Healthy(c.Request.Context())
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": "ok", "store": healthy})
	})

	api := r.Group("/api", session.Auth(cfg.JWTSigningKey, cfg.JWTIssuer))
	h.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.APIBaseURL).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	// Stop the poller before draining so no stale poll lands mid-shutdown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server exited")
	return nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}
