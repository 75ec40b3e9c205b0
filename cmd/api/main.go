package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborstay/booking-backend/api/routes"
	"github.com/harborstay/booking-backend/internal/availability"
	"github.com/harborstay/booking-backend/internal/bookings"
	"github.com/harborstay/booking-backend/internal/coupons"
	"github.com/harborstay/booking-backend/internal/inventory"
	"github.com/harborstay/booking-backend/internal/ratelimit"
	"github.com/harborstay/booking-backend/pkg/config"
	"github.com/harborstay/booking-backend/pkg/db"
	"github.com/harborstay/booking-backend/pkg/instance"
	"github.com/harborstay/booking-backend/pkg/logger"
	"github.com/harborstay/booking-backend/pkg/metrics"
	"github.com/harborstay/booking-backend/pkg/migrate"
	"github.com/harborstay/booking-backend/pkg/redis"
	"github.com/harborstay/booking-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	limiter, err := newLimiter(cfg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate limiter", err)
		os.Exit(1)
	}

	hasher, err := security.NewHasher(cfg.Coupon.HashSecret)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon hasher", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	couponMetrics := metrics.NewCouponMetrics(registry)
	searchMetrics := metrics.NewSearchMetrics(registry)

	bookingService, err := bookings.NewService(bookings.NewRepository(dbClient.DB()), cfg.Booking.PendingTTL, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(
		availability.NewRepository(dbClient.DB()),
		bookingService,
		searchMetrics,
		logg,
		availability.Options{MaxNights: cfg.Search.MaxNights, Location: cfg.App.Location()},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, bookingService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	couponRepo := coupons.NewRepository(dbClient.DB())
	couponManager, err := coupons.NewManager(couponRepo, dbClient, hasher, logg, coupons.ManagerOptions{
		ReservationTTL: cfg.Coupon.ReservationTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon manager", err)
		os.Exit(1)
	}
	couponService, err := coupons.NewService(
		couponManager,
		limiter,
		coupons.NewAttemptLog(couponRepo, hasher, logg),
		couponMetrics,
		hasher,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		DB:           dbClient,
		Limiter:      limiter,
		Gatherer:     registry,
		Availability: availabilityService,
		Coupons:      couponService,
		Inventory:    inventoryService,
	}
	if redisClient != nil {
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":              cfg.App.Env,
		"addr":             addr,
		"instance":         instance.GetID(),
		"rate_limit_store": cfg.RateLimit.Backend,
		"redis_enabled":    redisClient != nil,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

// newLimiter picks the shared Redis store when configured, else process memory.
func newLimiter(cfg *config.Config, redisClient *redis.Client) (*ratelimit.Limiter, error) {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RateLimit.UsesRedis() {
		if redisClient == nil {
			return nil, errors.New("redis rate limit backend requires HARBORSTAY_REDIS_URL or HARBORSTAY_REDIS_ADDR")
		}
		redisStore, err := ratelimit.NewRedisStore(redisClient)
		if err != nil {
			return nil, err
		}
		store = redisStore
	}
	return ratelimit.New(store, nil, ratelimit.PoliciesFromConfig(cfg.RateLimit)...)
}
