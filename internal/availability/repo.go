package availability

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/internal/repo"
	"github.com/harborstay/booking-backend/pkg/db/models"
)

// Repository loads the room catalog and its overlay rows.
type Repository interface {
	ListRoomTypes(ctx context.Context) ([]models.RoomType, error)
	ListRates(ctx context.Context, roomTypeIDs []uuid.UUID, from, to string) ([]models.Rate, error)
	ListAdjustments(ctx context.Context, roomTypeIDs []uuid.UUID, from, to string) ([]models.InventoryAdjustment, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an availability repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) ListRoomTypes(ctx context.Context) ([]models.RoomType, error) {
	var rooms []models.RoomType
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Order("name ASC, id ASC").
		Find(&rooms).Error
	return rooms, err
}

// ListRates returns every rate whose inclusive range touches [from, to].
func (r *repository) ListRates(ctx context.Context, roomTypeIDs []uuid.UUID, from, to string) ([]models.Rate, error) {
	if len(roomTypeIDs) == 0 {
		return nil, nil
	}
	var rates []models.Rate
	err := r.DB(ctx).
		Where("room_type_id IN ?", roomTypeIDs).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("created_at ASC").
		Find(&rates).Error
	return rates, err
}

func (r *repository) ListAdjustments(ctx context.Context, roomTypeIDs []uuid.UUID, from, to string) ([]models.InventoryAdjustment, error) {
	if len(roomTypeIDs) == 0 {
		return nil, nil
	}
	var adjustments []models.InventoryAdjustment
	err := r.DB(ctx).
		Where("room_type_id IN ?", roomTypeIDs).
		Where("day_key >= ? AND day_key <= ?", from, to).
		Find(&adjustments).Error
	return adjustments, err
}
