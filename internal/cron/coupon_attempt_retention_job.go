package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/harborstay/booking-backend/pkg/logger"
)

const defaultAttemptRetention = 90 * 24 * time.Hour

// CouponAttemptRetentionJobParams configure attempt-log retention.
type CouponAttemptRetentionJobParams struct {
	Logger    *logger.Logger
	Purger    attemptPurger
	Retention time.Duration
	BatchSize int
}

type attemptPurger interface {
	Purge(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// NewCouponAttemptRetentionJob deletes attempt-log rows older than the retention window.
func NewCouponAttemptRetentionJob(params CouponAttemptRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Purger == nil {
		return nil, fmt.Errorf("attempt purger required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultAttemptRetention
	}
	return &couponAttemptRetentionJob{
		logg:      params.Logger,
		purger:    params.Purger,
		retention: retention,
		batchSize: params.BatchSize,
		now:       time.Now,
	}, nil
}

type couponAttemptRetentionJob struct {
	logg      *logger.Logger
	purger    attemptPurger
	retention time.Duration
	batchSize int
	now       func() time.Time
}

func (j *couponAttemptRetentionJob) Name() string { return "coupon-attempt-retention" }

func (j *couponAttemptRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := drain(ctx, j.batchSize, func(ctx context.Context, limit int) (int64, error) {
		return j.purger.Purge(ctx, cutoff, limit)
	})
	if err != nil {
		return fmt.Errorf("coupon attempt retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "coupon attempt retention cleanup complete")
	return nil
}
