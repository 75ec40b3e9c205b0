package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/enums"
)

// CouponRedemption is one slot of a coupon's usage caps. A RESERVED row without a
// booking whose ExpiresAt has passed no longer holds its slot.
type CouponRedemption struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CouponID       uuid.UUID              `gorm:"column:coupon_id;type:uuid;not null;index:idx_coupon_redemptions_coupon_status,priority:1;uniqueIndex:ux_coupon_redemptions_coupon_booking,priority:1"`
	Status         enums.RedemptionStatus `gorm:"column:status;type:varchar(16);not null;index:idx_coupon_redemptions_coupon_status,priority:2"`
	BookingID      *uuid.UUID             `gorm:"column:booking_id;type:uuid;uniqueIndex:ux_coupon_redemptions_coupon_booking,priority:2"`
	GuestEmail     *string                `gorm:"column:guest_email;index"`
	GuestPhone     *string                `gorm:"column:guest_phone"`
	RoomTypeID     *uuid.UUID             `gorm:"column:room_type_id;type:uuid"`
	Channel        *string                `gorm:"column:channel"`
	Subtotal       decimal.Decimal        `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal        `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	ExpiresAt      *time.Time             `gorm:"column:expires_at"`
	ConfirmedAt    *time.Time             `gorm:"column:confirmed_at"`
	ReleasedAt     *time.Time             `gorm:"column:released_at"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *CouponRedemption) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HoldsSlot reports whether the row counts against the coupon's caps at now.
func (r CouponRedemption) HoldsSlot(now time.Time) bool {
	switch r.Status {
	case enums.RedemptionStatusConfirmed:
		return true
	case enums.RedemptionStatusReserved:
		return r.BookingID != nil || r.ExpiresAt == nil || r.ExpiresAt.After(now)
	default:
		return false
	}
}
