package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/db"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
	"github.com/harborstay/booking-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reservation is the outcome of Reserve. RedemptionID and ExpiresAt are set
// only when the evaluation is valid.
type Reservation struct {
	Evaluation
	RedemptionID *uuid.UUID
	ExpiresAt    *time.Time
	Reused       bool
}

// Manager evaluates coupons and owns the redemption lifecycle
// RESERVED -> CONFIRMED | RELEASED.
type Manager struct {
	repo   Repository
	tx     txRunner
	hasher *security.Hasher
	ttl    time.Duration
	now    func() time.Time
	logg   *logger.Logger
}

// ManagerOptions configures NewManager.
type ManagerOptions struct {
	ReservationTTL time.Duration
	Now            func() time.Time
}

// NewManager builds the coupon manager. A nil clock defaults to time.Now.
func NewManager(repo Repository, tx txRunner, hasher *security.Hasher, logg *logger.Logger, opts ManagerOptions) (*Manager, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher required")
	}
	if opts.ReservationTTL <= 0 {
		return nil, fmt.Errorf("reservation ttl must be positive")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{repo: repo, tx: tx, hasher: hasher, ttl: opts.ReservationTTL, now: opts.Now, logg: logg}, nil
}

func (m *Manager) clock() time.Time {
	return m.now().UTC()
}

// Preview evaluates a code without taking a slot. Only confirmed redemptions
// count toward the caps here; Reserve re-checks with live holds included.
func (m *Manager) Preview(ctx context.Context, req Request) (Evaluation, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		return Evaluation{}, err
	}
	now := m.clock()

	coupon, err := m.repo.FindByHash(ctx, m.hasher.CouponCode(req.Code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Evaluate(nil, req, Usage{}, now), nil
		}
		return Evaluation{}, m.internal(ctx, "find coupon", err)
	}
	usage, err := m.repo.CountUsage(ctx, coupon.ID, req.GuestEmail, now, false)
	if err != nil {
		return Evaluation{}, m.internal(ctx, "count coupon usage", err)
	}
	return Evaluate(coupon, req, usage, now), nil
}

// Reserve evaluates a code and, when valid, holds one slot for the guest until
// the reservation TTL lapses. The coupon row is locked for the whole check, so
// concurrent reservations cannot both take the last slot. A single-use coupon
// retried by the guest who already holds it returns the existing hold.
func (m *Manager) Reserve(ctx context.Context, req Request) (*Reservation, error) {
	req = req.normalized()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.GuestEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest email is required to reserve a coupon")
	}
	now := m.clock()
	hash := m.hasher.CouponCode(req.Code)

	var out Reservation
	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := m.repo.WithTx(tx)
		coupon, err := repo.LockByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out = Reservation{Evaluation: Evaluate(nil, req, Usage{}, now)}
				return nil
			}
			return err
		}

		if _, err := repo.ReleaseExpiredHolds(ctx, &coupon.ID, now, 0); err != nil {
			return err
		}

		var existing *models.CouponRedemption
		if coupon.SingleUse {
			existing, err = repo.FindActiveHold(ctx, coupon.ID, req.GuestEmail, req.GuestPhone, now)
			if err != nil {
				return err
			}
		}

		usage, err := repo.CountUsage(ctx, coupon.ID, req.GuestEmail, now, true)
		if err != nil {
			return err
		}
		if existing != nil {
			// the guest's own hold must not block their retry
			usage.Global--
			if existing.GuestEmail != nil && *existing.GuestEmail == req.GuestEmail {
				usage.Guest--
			}
		}

		eval := Evaluate(coupon, req, usage, now)
		out = Reservation{Evaluation: eval}
		if !eval.Valid {
			return nil
		}

		if existing != nil {
			out.RedemptionID = &existing.ID
			out.ExpiresAt = existing.ExpiresAt
			out.Reused = true
			return nil
		}

		expiresAt := now.Add(m.ttl)
		redemption := &models.CouponRedemption{
			CouponID:       coupon.ID,
			Status:         enums.RedemptionStatusReserved,
			GuestEmail:     optionalString(req.GuestEmail),
			GuestPhone:     optionalString(req.GuestPhone),
			RoomTypeID:     req.RoomTypeID,
			Channel:        optionalString(req.Channel),
			Subtotal:       req.Subtotal.Round(2),
			DiscountAmount: eval.DiscountAmount,
			ExpiresAt:      &expiresAt,
		}
		if err := repo.CreateRedemption(ctx, redemption); err != nil {
			return err
		}
		out.RedemptionID = &redemption.ID
		out.ExpiresAt = &expiresAt
		return nil
	})
	if err != nil {
		return nil, m.internal(ctx, "reserve coupon", err)
	}

	if out.RedemptionID != nil && m.logg != nil {
		logCtx := m.logg.WithCouponID(ctx, out.CouponID.String())
		logCtx = m.logg.WithFields(logCtx, map[string]any{
			"redemption_id": out.RedemptionID.String(),
			"reused":        out.Reused,
		})
		m.logg.Info(logCtx, "coupon reserved")
	}
	return &out, nil
}

// Release gives a hold back before checkout completes. It reports whether a
// hold owned by guestEmail was released; anything else is a no-op.
func (m *Manager) Release(ctx context.Context, redemptionID uuid.UUID, guestEmail string) (bool, error) {
	released, err := m.repo.ReleaseHold(ctx, redemptionID, NormalizeEmail(guestEmail), m.clock())
	if err != nil {
		return false, m.internal(ctx, "release coupon hold", err)
	}
	return released, nil
}

// Confirm attaches a hold to a booking. Confirming an already-confirmed
// redemption for the same booking is a no-op.
func (m *Manager) Confirm(ctx context.Context, redemptionID, bookingID uuid.UUID) (*models.CouponRedemption, error) {
	now := m.clock()
	var out *models.CouponRedemption
	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := m.repo.WithTx(tx)
		redemption, err := repo.LockRedemption(ctx, redemptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon redemption not found")
			}
			return err
		}

		switch redemption.Status {
		case enums.RedemptionStatusConfirmed:
			if redemption.BookingID != nil && *redemption.BookingID == bookingID {
				out = redemption
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "redemption already confirmed for another booking")
		case enums.RedemptionStatusReleased:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "redemption was released")
		}

		if redemption.BookingID != nil && *redemption.BookingID != bookingID {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "redemption is attached to another booking")
		}
		if !redemption.HoldsSlot(now) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "redemption hold expired")
		}

		redemption.Status = enums.RedemptionStatusConfirmed
		redemption.BookingID = &bookingID
		redemption.ConfirmedAt = &now
		if err := repo.SaveRedemption(ctx, redemption); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "booking already redeemed this coupon")
			}
			return err
		}
		out = redemption
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, m.internal(ctx, "confirm coupon redemption", err)
	}
	return out, nil
}

// SweepExpired releases up to limit lapsed holds across every coupon.
func (m *Manager) SweepExpired(ctx context.Context, limit int) (int64, error) {
	return m.repo.ReleaseExpiredHolds(ctx, nil, m.clock(), limit)
}

func validateRequest(req Request) error {
	if req.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if req.Subtotal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	if req.Channel != "" && !enums.SalesChannel(req.Channel).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown sales channel").
			WithDetails(map[string]any{"channel": req.Channel})
	}
	return nil
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (m *Manager) internal(ctx context.Context, op string, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if m.logg != nil {
		m.logg.Error(ctx, "coupons: "+op, err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
