package cron

import (
	"context"
	"fmt"

	"github.com/harborstay/booking-backend/pkg/logger"
)

// PendingBookingExpiryJobParams configure the abandoned-checkout expiry job.
type PendingBookingExpiryJobParams struct {
	Logger    *logger.Logger
	Expirer   bookingExpirer
	BatchSize int
}

type bookingExpirer interface {
	ExpireAbandoned(ctx context.Context, limit int) (int64, error)
}

// NewPendingBookingExpiryJob marks PENDING bookings past the pending TTL as EXPIRED.
func NewPendingBookingExpiryJob(params PendingBookingExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("booking expirer required")
	}
	return &pendingBookingExpiryJob{
		logg:      params.Logger,
		expirer:   params.Expirer,
		batchSize: params.BatchSize,
	}, nil
}

type pendingBookingExpiryJob struct {
	logg      *logger.Logger
	expirer   bookingExpirer
	batchSize int
}

func (j *pendingBookingExpiryJob) Name() string { return "pending-booking-expiry" }

func (j *pendingBookingExpiryJob) Run(ctx context.Context) error {
	expired, err := drain(ctx, j.batchSize, j.expirer.ExpireAbandoned)
	if err != nil {
		return fmt.Errorf("expire pending bookings: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "bookings_expired", expired), "pending booking expiry complete")
	return nil
}
