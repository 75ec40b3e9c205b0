package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/enums"
)

// Coupon is a discount definition. The plaintext code is never persisted, only
// its keyed hash and a short prefix for operator lookup.
type Coupon struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CodeHash          string              `gorm:"column:code_hash;not null;uniqueIndex:ux_coupons_code_hash"`
	CodePrefix        string              `gorm:"column:code_prefix;not null;index"`
	Type              enums.CouponType    `gorm:"column:type;type:varchar(16);not null"`
	Value             decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"column:max_discount_amount;type:numeric(12,2)"`
	MinBookingValue   decimal.NullDecimal `gorm:"column:min_booking_value;type:numeric(12,2)"`
	IsActive          bool                `gorm:"column:is_active;not null;default:true"`
	StartsAt          *time.Time          `gorm:"column:starts_at"`
	EndsAt            *time.Time          `gorm:"column:ends_at"`
	GuestEmail        *string             `gorm:"column:guest_email"`
	GuestPhone        *string             `gorm:"column:guest_phone"`
	RoomTypeIDs       []string            `gorm:"column:room_type_ids;serializer:json"`
	Channels          []string            `gorm:"column:channels;serializer:json"`
	MaxGlobalUses     *int                `gorm:"column:max_global_uses"`
	MaxUsesPerGuest   *int                `gorm:"column:max_uses_per_guest"`
	SingleUse         bool                `gorm:"column:single_use;not null;default:false"`
	Stackable         bool                `gorm:"column:stackable;not null;default:false"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
