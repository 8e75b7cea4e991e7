package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cloud-ru/mcp-emi-go/internal/config"
	"github.com/cloud-ru/mcp-emi-go/internal/httpapi"
	"github.com/cloud-ru/mcp-emi-go/internal/logging"
	"github.com/cloud-ru/mcp-emi-go/internal/repository"
	"github.com/cloud-ru/mcp-emi-go/internal/session"
	"github.com/cloud-ru/mcp-emi-go/internal/tools"
	"github.com/cloud-ru/mcp-emi-go/internal/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	tracer, shutdownTracing, err := tracing.InitTracing(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr)
		if err := redisCache.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable")
		}
		defer redisCache.Close()
		cache = redisCache
		log.Info().Str("addr", cfg.RedisAddr).Msg("form sessions stored in redis")
	} else {
		cache = repository.NewMemoryCache()
		log.Info().Msg("form sessions stored in memory (set REDIS_ADDR to persist)")
	}

	sessions := session.NewService(repository.NewFormStateRepository(cache, cfg.SessionTTL), cfg)
	registry := tools.Registry(cfg, tracer)
	handler := httpapi.New(registry, sessions)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      otelhttp.NewHandler(handler.Routes(), "emi-http"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Strs("tools", tools.Names(registry)).Msg("EMI server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
		return
	case <-quit:
		log.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server exited")
}
