package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/enums"
)

// Booking occupies the half-open day range [CheckIn, CheckOut) of one room type.
type Booking struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RoomTypeID uuid.UUID           `gorm:"column:room_type_id;type:uuid;not null;index:idx_bookings_room_range,priority:1"`
	CheckIn    string              `gorm:"column:check_in;type:varchar(10);not null;index:idx_bookings_room_range,priority:2"`
	CheckOut   string              `gorm:"column:check_out;type:varchar(10);not null;index:idx_bookings_room_range,priority:3"`
	Status     enums.BookingStatus `gorm:"column:status;type:varchar(16);not null;default:'PENDING'"`
	GuestEmail string              `gorm:"column:guest_email;not null"`
	GuestPhone *string             `gorm:"column:guest_phone"`
	Adults     int                 `gorm:"column:adults;not null;default:1"`
	Children   int                 `gorm:"column:children;not null;default:0"`
	Channel    enums.SalesChannel  `gorm:"column:channel;type:varchar(16);not null;default:'web'"`
	TotalPrice decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
