package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborstay/booking-backend/internal/repo"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
)

// Repository persists coupons, their redemptions and the attempt log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByHash(ctx context.Context, hash string) (*models.Coupon, error)
	LockByHash(ctx context.Context, hash string) (*models.Coupon, error)
	CountUsage(ctx context.Context, couponID uuid.UUID, guestEmail string, now time.Time, includeHolds bool) (Usage, error)
	FindActiveHold(ctx context.Context, couponID uuid.UUID, guestEmail, guestPhone string, now time.Time) (*models.CouponRedemption, error)
	CreateRedemption(ctx context.Context, redemption *models.CouponRedemption) error
	LockRedemption(ctx context.Context, id uuid.UUID) (*models.CouponRedemption, error)
	SaveRedemption(ctx context.Context, redemption *models.CouponRedemption) error
	ReleaseHold(ctx context.Context, id uuid.UUID, guestEmail string, now time.Time) (bool, error)
	ReleaseExpiredHolds(ctx context.Context, couponID *uuid.UUID, now time.Time, limit int) (int64, error)
	CreateAttempt(ctx context.Context, entry *models.CouponAttemptLog) error
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.Bind(tx)}
}

func (r *repository) FindByHash(ctx context.Context, hash string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB(ctx).Where("code_hash = ?", hash).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) LockByHash(ctx context.Context, hash string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code_hash = ?", hash).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// slotScope keeps redemptions that count against caps. Holds are included only
// when includeHolds is set.
func slotScope(now time.Time, includeHolds bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !includeHolds {
			return db.Where("status = ?", enums.RedemptionStatusConfirmed)
		}
		return db.Where(
			"(status = ? OR (status = ? AND (booking_id IS NOT NULL OR expires_at IS NULL OR expires_at > ?)))",
			enums.RedemptionStatusConfirmed, enums.RedemptionStatusReserved, now,
		)
	}
}

func (r *repository) CountUsage(ctx context.Context, couponID uuid.UUID, guestEmail string, now time.Time, includeHolds bool) (Usage, error) {
	slots := func() *gorm.DB {
		return r.DB(ctx).Model(&models.CouponRedemption{}).
			Where("coupon_id = ?", couponID).
			Scopes(slotScope(now, includeHolds))
	}

	var usage Usage
	if err := slots().Count(&usage.Global).Error; err != nil {
		return Usage{}, err
	}
	if guestEmail == "" {
		return usage, nil
	}
	if err := slots().Where("guest_email = ?", guestEmail).Count(&usage.Guest).Error; err != nil {
		return Usage{}, err
	}
	return usage, nil
}

func (r *repository) FindActiveHold(ctx context.Context, couponID uuid.UUID, guestEmail, guestPhone string, now time.Time) (*models.CouponRedemption, error) {
	if guestEmail == "" && guestPhone == "" {
		return nil, nil
	}
	query := r.DB(ctx).
		Where("coupon_id = ? AND status = ? AND booking_id IS NULL", couponID, enums.RedemptionStatusReserved).
		Where("(expires_at IS NULL OR expires_at > ?)", now)
	switch {
	case guestEmail != "" && guestPhone != "":
		query = query.Where("(guest_email = ? OR guest_phone = ?)", guestEmail, guestPhone)
	case guestEmail != "":
		query = query.Where("guest_email = ?", guestEmail)
	default:
		query = query.Where("guest_phone = ?", guestPhone)
	}

	var holds []models.CouponRedemption
	if err := query.Order("created_at DESC").Limit(1).Find(&holds).Error; err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return nil, nil
	}
	return &holds[0], nil
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.CouponRedemption) error {
	return r.DB(ctx).Create(redemption).Error
}

func (r *repository) LockRedemption(ctx context.Context, id uuid.UUID) (*models.CouponRedemption, error) {
	var redemption models.CouponRedemption
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&redemption).Error
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repository) SaveRedemption(ctx context.Context, redemption *models.CouponRedemption) error {
	return r.DB(ctx).Save(redemption).Error
}

// ReleaseHold releases an unattached hold owned by guestEmail. An empty email
// only matches holds stored without one.
func (r *repository) ReleaseHold(ctx context.Context, id uuid.UUID, guestEmail string, now time.Time) (bool, error) {
	query := r.DB(ctx).Model(&models.CouponRedemption{}).
		Where("id = ? AND status = ? AND booking_id IS NULL", id, enums.RedemptionStatusReserved)
	if guestEmail == "" {
		query = query.Where("guest_email IS NULL")
	} else {
		query = query.Where("guest_email = ?", guestEmail)
	}
	res := query.Updates(map[string]any{
		"status":      enums.RedemptionStatusReleased,
		"released_at": now,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseExpiredHolds flips lapsed unattached holds to RELEASED. A nil couponID
// sweeps every coupon; limit <= 0 means no bound.
func (r *repository) ReleaseExpiredHolds(ctx context.Context, couponID *uuid.UUID, now time.Time, limit int) (int64, error) {
	ids := r.DB(ctx).Model(&models.CouponRedemption{}).
		Select("id").
		Where("status = ? AND booking_id IS NULL AND expires_at IS NOT NULL AND expires_at <= ?", enums.RedemptionStatusReserved, now)
	if couponID != nil {
		ids = ids.Where("coupon_id = ?", *couponID)
	}
	if limit > 0 {
		ids = ids.Order("expires_at").Limit(limit)
	}

	res := r.DB(ctx).Model(&models.CouponRedemption{}).
		Where("id IN (?)", ids).
		Updates(map[string]any{
			"status":      enums.RedemptionStatusReleased,
			"released_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CreateAttempt(ctx context.Context, entry *models.CouponAttemptLog) error {
	return r.DB(ctx).Create(entry).Error
}

// DeleteAttemptsBefore removes at most limit attempt rows older than cutoff.
func (r *repository) DeleteAttemptsBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	ids := r.DB(ctx).Model(&models.CouponAttemptLog{}).
		Select("id").
		Where("created_at < ?", cutoff).
		Order("created_at")
	if limit > 0 {
		ids = ids.Limit(limit)
	}
	res := r.DB(ctx).Where("id IN (?)", ids).Delete(&models.CouponAttemptLog{})
	return res.RowsAffected, res.Error
}
