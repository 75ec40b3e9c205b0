package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomType is a sellable product: the pricing and capacity floor for every night.
type RoomType struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	BasePrice      decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	TotalUnits     int             `gorm:"column:total_units;not null"`
	IncludedAdults int             `gorm:"column:included_adults;not null;default:2"`
	MaxGuests      int             `gorm:"column:max_guests;not null;default:2"`
	ExtraAdultFee  decimal.Decimal `gorm:"column:extra_adult_fee;type:numeric(12,2);not null;default:0"`
	Child6To11Fee  decimal.Decimal `gorm:"column:child_6_to_11_fee;type:numeric(12,2);not null;default:0"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *RoomType) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
