package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborstay/booking-backend/internal/repo"
	"github.com/harborstay/booking-backend/pkg/db/models"
)

// Repository persists per-day inventory overrides.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListRoomTypeIDs(ctx context.Context) ([]uuid.UUID, error)
	LockRoomType(ctx context.Context, id uuid.UUID) (*models.RoomType, error)
	UpsertAdjustment(ctx context.Context, adj *models.InventoryAdjustment) error
	FindAdjustment(ctx context.Context, roomTypeID uuid.UUID, day string) (*models.InventoryAdjustment, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.Bind(tx)}
}

func (r *repository) ListRoomTypeIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.RoomType{}).
		Where("is_active = ?", true).
		Order("name ASC, id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// LockRoomType reads the room row FOR UPDATE so concurrent edits of the same room serialize.
func (r *repository) LockRoomType(ctx context.Context, id uuid.UUID) (*models.RoomType, error) {
	var room models.RoomType
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) UpsertAdjustment(ctx context.Context, adj *models.InventoryAdjustment) error {
	adj.UpdatedAt = time.Now().UTC()
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_type_id"}, {Name: "day_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_units", "updated_by", "updated_at"}),
		}).
		Create(adj).Error
}

func (r *repository) FindAdjustment(ctx context.Context, roomTypeID uuid.UUID, day string) (*models.InventoryAdjustment, error) {
	var adj models.InventoryAdjustment
	err := r.DB(ctx).
		Where("room_type_id = ? AND day_key = ?", roomTypeID, day).
		First(&adj).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}
