// @title        QuickGram Auth API
// @version      1.0
// @description  Signup, login, logout and token refresh for QuickGram clients.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/quickgram/auth-service/internal/api"
	"github.com/quickgram/auth-service/internal/api/handler"
	"github.com/quickgram/auth-service/internal/api/middleware"
	"github.com/quickgram/auth-service/internal/core/ports"
	"github.com/quickgram/auth-service/internal/core/service"
	redisdb "github.com/quickgram/auth-service/internal/infrastructure/db/redis"
	"github.com/quickgram/auth-service/internal/infrastructure/queue"
	"github.com/quickgram/auth-service/internal/pkg/config"
	"github.com/quickgram/auth-service/pkg/logger"
)

const serviceName = "auth-service"

func main() {
	if err := run(); err != nil {
		l := logger.New(logger.Options{})
		l.Fatal().Err(err).Msg("auth service stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	trusted, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Output:  os.Stdout,
	})
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreBackend).
		Bool("revocation", cfg.Redis.RevocationEnabled).
		Msg("service starting")

	// Password hashing runs on a bounded pool so bcrypt cannot starve the server.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewWorkerPool(cfg.Hashing.Workers, log)
	pool.Start(poolCtx)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithTimeout(log, "store", st.close)
	log.Info().Str("backend", cfg.StoreBackend).Msg("credential store ready")

	readiness := map[string]handler.Pinger{}
	if st.pinger != nil {
		readiness[cfg.StoreBackend] = st.pinger
	}

	var revoker ports.TokenRevoker
	if cfg.Redis.RevocationEnabled {
		list, err := redisdb.Open(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() {
			if err := list.Close(); err != nil {
				log.Error().Err(err).Msg("redis close error")
			}
		}()
		revoker = list
		readiness["redis"] = list
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	}

	hasher := service.NewBcryptHasher(cfg.Hashing.Cost, pool)
	tokens := service.NewJWTService(cfg.JWT.Secret,
		service.WithIssuer(cfg.JWT.Issuer),
		service.WithTTL(cfg.JWT.TTL),
	)
	authService, err := service.NewAuthService(
		service.NewCredentialStore(st.users, hasher),
		hasher,
		tokens,
		revoker,
		log,
	)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.RPS),
		Burst: cfg.RateLimit.Burst,
	}, log)
	defer limiter.Stop()

	e := api.NewRouter(api.RouterDeps{
		AuthService:    authService,
		RateLimiter:    limiter,
		Readiness:      readiness,
		TrustedProxies: trusted,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("graceful shutdown complete")
	return nil
}

func closeWithTimeout(log zerolog.Logger, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("component", name).Msg("close error")
	}
}
