package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/shiptrack/config"
	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/health"
	"github.com/ErlanBelekov/shiptrack/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/shiptrack/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/shiptrack/internal/log"
	"github.com/ErlanBelekov/shiptrack/internal/metrics"
	"github.com/ErlanBelekov/shiptrack/internal/repository"
	httptransport "github.com/ErlanBelekov/shiptrack/internal/transport/http"
	"github.com/ErlanBelekov/shiptrack/internal/transport/http/handler"
	"github.com/ErlanBelekov/shiptrack/internal/usecase"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	deps := map[string]health.Pinger{"postgres": pool}

	// Tracking cache is optional; leave the interface nil when disabled.
	var trackingCache repository.TrackingCache
	if cfg.RedisAddr != "" {
		rc := redis.NewTrackingCache(redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.TrackingCacheTTL)
		defer func() { _ = rc.Close() }()
		trackingCache = rc
		deps["redis"] = rc
		logger.Info("tracking cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TrackingCacheTTL)
	}

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// Users
	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, tokens)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Shipments
	shipmentRepo := postgres.NewShipmentRepository(pool)
	shipmentUsecase := usecase.NewShipmentUsecase(shipmentRepo, userRepo, trackingCache, logger)
	shipmentHandler := handler.NewShipmentHandler(shipmentUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, shipmentHandler, tokens, cfg.Env != "local"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
