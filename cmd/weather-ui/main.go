package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup/internal/client"
	"github.com/kjstillabower/weather-lookup/internal/config"
	"github.com/kjstillabower/weather-lookup/internal/controller"
	httphandler "github.com/kjstillabower/weather-lookup/internal/http"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/render"
	"github.com/kjstillabower/weather-lookup/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	clientOpts := []client.Option{client.WithLogger(logger)}
	if cfg.CircuitBreakerEnabled {
		clientOpts = append(clientOpts, client.WithBreaker(client.BreakerSettings{
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			OpenTimeout:      cfg.CircuitBreakerTimeout,
		}))
		logger.Info("circuit breaker enabled",
			zap.Uint32("failure_threshold", cfg.CircuitBreakerFailureThreshold),
			zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}

	geocoder, err := client.NewOpenMeteoGeocoder(cfg.GeocodeURL, cfg.UpstreamTimeout, clientOpts...)
	if err != nil {
		logger.Fatal("geocode client", zap.Error(err))
	}
	forecaster, err := client.NewOpenMeteoForecaster(cfg.ForecastURL, cfg.UpstreamTimeout, clientOpts...)
	if err != nil {
		logger.Fatal("forecast client", zap.Error(err))
	}

	store := newSessionStore(cfg, logger)

	page, err := render.NewPage()
	if err != nil {
		logger.Fatal("page templates", zap.Error(err))
	}

	ctrl := controller.New(geocoder, forecaster, store, logger, cfg.CityMaxLength)
	handler := httphandler.NewHandler(ctrl, store, page, logger, cfg.CityMaxLength)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	router := httphandler.NewRouter(handler, logger, httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		Limiter:        limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		logger.Error("session store close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// newSessionStore builds the configured backend, wrapped with error metrics.
func newSessionStore(cfg *config.Config, logger *zap.Logger) session.Store {
	var store session.Store
	switch cfg.SessionBackend {
	case config.BackendMemcached:
		store = session.NewMemcachedStore(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns, cfg.SessionTTL)
		logger.Info("session backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	case config.BackendRedis:
		store = session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		logger.Info("session backend: redis", zap.String("addr", cfg.RedisAddr))
	default:
		store = session.NewInMemoryStore(cfg.SessionTTL)
		logger.Info("session backend: in_memory")
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("session store unreachable at startup", zap.String("backend", cfg.SessionBackend), zap.Error(err))
	}
	return session.Instrument(store)
}
