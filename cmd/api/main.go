// BAKETRAK order management API.
//
// @title           BAKETRAK API
// @version         1.0
// @description     Order management backend for a bakery: accounts, catalog, orders and delivery tracking.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/baketrak/order-system/internal/api"
	"github.com/baketrak/order-system/internal/core/service"
	"github.com/baketrak/order-system/internal/infrastructure/db/postgres"
	"github.com/baketrak/order-system/internal/infrastructure/db/redis"
	"github.com/baketrak/order-system/internal/infrastructure/token"
	"github.com/baketrak/order-system/internal/pkg/config"
	"github.com/baketrak/order-system/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	tokens, err := token.NewManager(cfg.JWTSecret, token.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager")
	}

	rootCtx := context.Background()

	pool, err := postgres.Connect(rootCtx, cfg.Postgres.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	if err := postgres.Migrate(rootCtx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := redis.Connect(rootCtx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		// The catalog cache is optional; the API serves everything from
		// PostgreSQL when Redis is down.
		log.Warn().Err(err).Msg("redis unavailable, catalog caching disabled")
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	deps := api.Dependencies{
		AuthRepo:    postgres.NewAuthRepository(pool),
		OrderRepo:   postgres.NewOrderRepository(pool),
		ProductRepo: postgres.NewProductRepository(pool),
		Tokens:      tokens,
		Verifier:    service.NewPasswordVerifier(cfg.UseHash),
		Logger:      log,
		Pool:        pool,
		Redis:       rdb,
	}
	if rdb != nil {
		deps.Cache = redis.NewCatalogCache(rdb)
	}

	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Bool("use_hash", cfg.UseHash).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("graceful shutdown completed")
}
