package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rate overrides price and restrictions for the inclusive day-key range [StartDate, EndDate].
// Rows may overlap; readers resolve a day to the most recently created row.
type Rate struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RoomTypeID uuid.UUID       `gorm:"column:room_type_id;type:uuid;not null;index:idx_rates_room_range,priority:1"`
	StartDate  string          `gorm:"column:start_date;type:varchar(10);not null;index:idx_rates_room_range,priority:2"`
	EndDate    string          `gorm:"column:end_date;type:varchar(10);not null;index:idx_rates_room_range,priority:3"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	MinLOS     int             `gorm:"column:min_los;not null;default:1"`
	StopSell   bool            `gorm:"column:stop_sell;not null;default:false"`
	CTA        bool            `gorm:"column:cta;not null;default:false"`
	CTD        bool            `gorm:"column:ctd;not null;default:false"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Rate) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
