package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborstay/booking-backend/internal/bookings"
	"github.com/harborstay/booking-backend/internal/coupons"
	"github.com/harborstay/booking-backend/internal/cron"
	"github.com/harborstay/booking-backend/pkg/config"
	"github.com/harborstay/booking-backend/pkg/db"
	"github.com/harborstay/booking-backend/pkg/instance"
	"github.com/harborstay/booking-backend/pkg/logger"
	"github.com/harborstay/booking-backend/pkg/metrics"
	"github.com/harborstay/booking-backend/pkg/migrate"
	"github.com/harborstay/booking-backend/pkg/redis"
	"github.com/harborstay/booking-backend/pkg/security"
)

const lockName = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	var lock cron.Lock = cron.NewLocalLock()
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
	} else {
		logg.Warn(context.Background(), "redis not configured; cron lock is process-local")
	}

	hasher, err := security.NewHasher(cfg.Coupon.HashSecret)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon hasher", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookings.NewRepository(dbClient.DB()), cfg.Booking.PendingTTL, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
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

	holdSweep, err := cron.NewCouponHoldSweepJob(cron.CouponHoldSweepJobParams{
		Logger:  logg,
		Sweeper: couponManager,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon hold sweep job", err)
		os.Exit(1)
	}

	pendingExpiry, err := cron.NewPendingBookingExpiryJob(cron.PendingBookingExpiryJobParams{
		Logger:  logg,
		Expirer: bookingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending booking expiry job", err)
		os.Exit(1)
	}

	attemptRetention, err := cron.NewCouponAttemptRetentionJob(cron.CouponAttemptRetentionJobParams{
		Logger:    logg,
		Purger:    coupons.NewAttemptLog(couponRepo, hasher, logg),
		Retention: cfg.Cron.AttemptLogRetention,
		BatchSize: cfg.Cron.AttemptLogDeleteBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attempt retention job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(holdSweep, pendingExpiry, attemptRetention)
	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockName, env)
}
