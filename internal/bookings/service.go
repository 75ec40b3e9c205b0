package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service answers occupancy questions using the pending-booking TTL.
type Service struct {
	repo       Repository
	pendingTTL time.Duration
	now        func() time.Time
}

// NewService builds an occupancy service. A nil clock defaults to time.Now.
func NewService(repo Repository, pendingTTL time.Duration, now func() time.Time) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if pendingTTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, pendingTTL: pendingTTL, now: now}, nil
}

// PendingSince is the creation time after which a PENDING booking still holds inventory.
func (s *Service) PendingSince() time.Time {
	return s.now().UTC().Add(-s.pendingTTL)
}

// ActiveOverlapping counts active bookings per room type overlapping [checkIn, checkOut).
func (s *Service) ActiveOverlapping(ctx context.Context, roomTypeIDs []uuid.UUID, checkIn, checkOut string) (map[uuid.UUID]int, error) {
	return s.repo.CountActiveOverlapping(ctx, roomTypeIDs, checkIn, checkOut, s.PendingSince())
}

// ActiveOnDay counts active bookings occupying day, reading through tx when provided.
func (s *Service) ActiveOnDay(ctx context.Context, tx *gorm.DB, roomTypeID uuid.UUID, day string) (int, error) {
	return s.repo.WithTx(tx).CountActiveOnDay(ctx, roomTypeID, day, s.PendingSince())
}

// ExpireAbandoned marks PENDING bookings older than the TTL as EXPIRED.
func (s *Service) ExpireAbandoned(ctx context.Context, limit int) (int64, error) {
	return s.repo.ExpirePendingBefore(ctx, s.PendingSince(), limit)
}
