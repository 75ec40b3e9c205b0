package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/internal/repo"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
)

// Repository reads booking occupancy. Bookings are written by the checkout flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountActiveOverlapping(ctx context.Context, roomTypeIDs []uuid.UUID, checkIn, checkOut string, pendingSince time.Time) (map[uuid.UUID]int, error)
	CountActiveOnDay(ctx context.Context, roomTypeID uuid.UUID, day string, pendingSince time.Time) (int, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.Bind(tx)}
}

// activeScope keeps CONFIRMED bookings and PENDING bookings created after pendingSince.
func activeScope(pendingSince time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(status = ? OR (status = ? AND created_at > ?))",
			enums.BookingStatusConfirmed, enums.BookingStatusPending, pendingSince,
		)
	}
}

type roomCount struct {
	RoomTypeID uuid.UUID
	Total      int
}

func (r *repository) CountActiveOverlapping(ctx context.Context, roomTypeIDs []uuid.UUID, checkIn, checkOut string, pendingSince time.Time) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(roomTypeIDs))
	if len(roomTypeIDs) == 0 {
		return counts, nil
	}

	var rows []roomCount
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Select("room_type_id, COUNT(*) AS total").
		Scopes(activeScope(pendingSince)).
		Where("room_type_id IN ?", roomTypeIDs).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Group("room_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.RoomTypeID] = row.Total
	}
	return counts, nil
}

func (r *repository) CountActiveOnDay(ctx context.Context, roomTypeID uuid.UUID, day string, pendingSince time.Time) (int, error) {
	var total int64
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Scopes(activeScope(pendingSince)).
		Where("room_type_id = ?", roomTypeID).
		Where("check_in <= ? AND check_out > ?", day, day).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *repository) ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	db := r.DB(ctx)
	ids := db.Model(&models.Booking{}).
		Select("id").
		Where("status = ? AND created_at <= ?", enums.BookingStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		ids = ids.Limit(limit)
	}

	res := db.Model(&models.Booking{}).
		Where("id IN (?)", ids).
		Where("status = ?", enums.BookingStatusPending).
		Update("status", enums.BookingStatusExpired)
	return res.RowsAffected, res.Error
}
