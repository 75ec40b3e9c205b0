package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/enums"
)

// CouponAttemptLog is append-only abuse telemetry. Every identifying value is hashed.
type CouponAttemptLog struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Operation      enums.CouponOperation     `gorm:"column:operation;type:varchar(16);not null"`
	CouponID       *uuid.UUID                `gorm:"column:coupon_id;type:uuid"`
	CodeHashPrefix string                    `gorm:"column:code_hash_prefix;not null"`
	IPHash         string                    `gorm:"column:ip_hash;not null;index"`
	UserAgentHash  *string                   `gorm:"column:user_agent_hash"`
	IdentityHash   *string                   `gorm:"column:identity_hash"`
	Result         enums.CouponAttemptResult `gorm:"column:result;type:varchar(16);not null"`
	Reason         enums.CouponReason        `gorm:"column:reason;type:varchar(32);not null"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime;index"`
}

func (l *CouponAttemptLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
