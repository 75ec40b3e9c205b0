package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryAdjustment overrides the sellable unit count of one room type on one day.
type InventoryAdjustment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RoomTypeID uuid.UUID `gorm:"column:room_type_id;type:uuid;not null;uniqueIndex:ux_inventory_adjustments_room_day,priority:1"`
	DayKey     string    `gorm:"column:day_key;type:varchar(10);not null;uniqueIndex:ux_inventory_adjustments_room_day,priority:2"`
	TotalUnits int       `gorm:"column:total_units;not null"`
	UpdatedBy  *string   `gorm:"column:updated_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *InventoryAdjustment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
