package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/config"
	"github.com/avolkhin/shortener/internal/generator"
	"github.com/avolkhin/shortener/internal/handler"
	"github.com/avolkhin/shortener/internal/ratelimit"
	"github.com/avolkhin/shortener/internal/repository"
	"github.com/avolkhin/shortener/internal/service"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	sugar.Infow("Starting URL shortener service")

	cfg, err := config.ParseFlags()
	if err != nil {
		sugar.Fatalw("Configuration error",
			"error", err.Error())
	}

	sugar.Infow("Configuration loaded",
		"server_address", cfg.ServerAddress,
		"base_url", cfg.BaseURL,
		"auth_enabled", cfg.AuthEnabled,
		"rate_limit_enabled", cfg.RateLimitEnabled,
	)

	var store repository.Store
	if cfg.DatabaseDSN != "" {
		pgStore, err := repository.NewPostgresStore(context.Background(), cfg.DatabaseDSN)
		if err != nil {
			sugar.Fatalw("Failed to connect to PostgreSQL",
				"error", err.Error())
		}
		store = pgStore
		sugar.Infow("Using PostgreSQL store")
	} else {
		store = repository.NewMemoryStore(cfg.FileStoragePath, logger)
		sugar.Infow("Using in-memory store",
			"file_storage_path", cfg.FileStoragePath)
	}
	defer store.Close()

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	verifier := auth.NewVerifier(cfg.AuthEnabled, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	shortenerService := service.NewShortenerService(store, generator.New(), cfg.BaseURL, cfg.AuthEnabled, logger)

	h := handler.NewHandler(shortenerService, logger)
	r := h.SetupRouter(verifier, limiter)

	sugar.Infow("Server starting",
		"address", cfg.ServerAddress,
	)

	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		sugar.Fatalw(err.Error(), "event", "start server")
	}
}
