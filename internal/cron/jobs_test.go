package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborstay/booking-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

// batchFake hands out remaining rows in batches of at most limit.
type batchFake struct {
	remaining int64
	limits    []int
	cutoffs   []time.Time
	err       error
}

func (f *batchFake) take(limit int) (int64, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	n := int64(limit)
	if f.remaining < n {
		n = f.remaining
	}
	f.remaining -= n
	return n, nil
}

func (f *batchFake) SweepExpired(_ context.Context, limit int) (int64, error) {
	return f.take(limit)
}

func (f *batchFake) ExpireAbandoned(_ context.Context, limit int) (int64, error) {
	return f.take(limit)
}

func (f *batchFake) Purge(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.take(limit)
}

func TestDrainStopsOnShortBatch(t *testing.T) {
	fake := &batchFake{remaining: 25}
	total, err := drain(context.Background(), 10, func(_ context.Context, limit int) (int64, error) {
		return fake.take(limit)
	})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected 25 rows, got %d", total)
	}
	if len(fake.limits) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(fake.limits))
	}
}

func TestDrainDefaultsBatchSize(t *testing.T) {
	fake := &batchFake{}
	if _, err := drain(context.Background(), 0, func(_ context.Context, limit int) (int64, error) {
		return fake.take(limit)
	}); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if fake.limits[0] != defaultBatchSize {
		t.Fatalf("expected default batch %d, got %d", defaultBatchSize, fake.limits[0])
	}
}

func TestDrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := drain(ctx, 10, func(context.Context, int) (int64, error) {
		calls++
		return 10, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no batches, ran %d", calls)
	}
}

func TestCouponHoldSweepJob(t *testing.T) {
	fake := &batchFake{remaining: 7}
	job, err := NewCouponHoldSweepJob(CouponHoldSweepJobParams{Logger: testLogger(), Sweeper: fake, BatchSize: 5})
	if err != nil {
		t.Fatalf("NewCouponHoldSweepJob: %v", err)
	}
	if job.Name() != "coupon-hold-sweep" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.remaining != 0 {
		t.Fatalf("expected every hold swept, %d left", fake.remaining)
	}

	failing := &batchFake{err: errors.New("db down")}
	job, _ = NewCouponHoldSweepJob(CouponHoldSweepJobParams{Logger: testLogger(), Sweeper: failing})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPendingBookingExpiryJob(t *testing.T) {
	fake := &batchFake{remaining: 3}
	job, err := NewPendingBookingExpiryJob(PendingBookingExpiryJobParams{Logger: testLogger(), Expirer: fake})
	if err != nil {
		t.Fatalf("NewPendingBookingExpiryJob: %v", err)
	}
	if job.Name() != "pending-booking-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fake.limits) != 1 || fake.remaining != 0 {
		t.Fatalf("expected a single short batch, got %v (remaining %d)", fake.limits, fake.remaining)
	}

	if _, err := NewPendingBookingExpiryJob(PendingBookingExpiryJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without expirer")
	}
}

func TestCouponAttemptRetentionJobUsesCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	fake := &batchFake{remaining: 4}
	jobIface, err := NewCouponAttemptRetentionJob(CouponAttemptRetentionJobParams{
		Logger:    testLogger(),
		Purger:    fake,
		BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("NewCouponAttemptRetentionJob: %v", err)
	}
	job, ok := jobIface.(*couponAttemptRetentionJob)
	if !ok {
		t.Fatalf("expected couponAttemptRetentionJob, got %T", jobIface)
	}
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-defaultAttemptRetention)
	for _, cutoff := range fake.cutoffs {
		if !cutoff.Equal(expected) {
			t.Fatalf("expected cutoff %s, got %s", expected, cutoff)
		}
	}
	if len(fake.cutoffs) != 3 {
		t.Fatalf("expected 3 batches (2, 2, 0), got %d", len(fake.cutoffs))
	}
}
