package cron

import (
	"context"
	"fmt"

	"github.com/harborstay/booking-backend/pkg/logger"
)

// CouponHoldSweepJobParams configure the coupon hold sweeper.
type CouponHoldSweepJobParams struct {
	Logger    *logger.Logger
	Sweeper   holdSweeper
	BatchSize int
}

type holdSweeper interface {
	SweepExpired(ctx context.Context, limit int) (int64, error)
}

// NewCouponHoldSweepJob releases lapsed coupon holds that no booking claimed.
// Readers already ignore them; the sweep keeps the redemption table honest.
func NewCouponHoldSweepJob(params CouponHoldSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("hold sweeper required")
	}
	return &couponHoldSweepJob{
		logg:      params.Logger,
		sweeper:   params.Sweeper,
		batchSize: params.BatchSize,
	}, nil
}

type couponHoldSweepJob struct {
	logg      *logger.Logger
	sweeper   holdSweeper
	batchSize int
}

func (j *couponHoldSweepJob) Name() string { return "coupon-hold-sweep" }

func (j *couponHoldSweepJob) Run(ctx context.Context) error {
	released, err := drain(ctx, j.batchSize, j.sweeper.SweepExpired)
	if err != nil {
		return fmt.Errorf("sweep coupon holds: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "holds_released", released), "coupon hold sweep complete")
	return nil
}
