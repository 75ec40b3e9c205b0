package coupons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborstay/booking-backend/internal/ratelimit"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
	"github.com/harborstay/booking-backend/pkg/security"
)

// Limiter decides whether an attempt stays within its policy.
type Limiter interface {
	Allow(ctx context.Context, policy, origin, identity string) (ratelimit.Decision, error)
}

// Observer receives one call per recorded attempt.
type Observer interface {
	ObserveAttempt(operation, result, reason string)
}

// Service is the boundary-facing coupon API.
type Service interface {
	Validate(ctx context.Context, req Request, origin Origin) (*ValidateResult, error)
	Reserve(ctx context.Context, req Request, origin Origin) (*ReserveResult, error)
	Release(ctx context.Context, redemptionID uuid.UUID, guestEmail string) (*ReleaseResult, error)
	Confirm(ctx context.Context, redemptionID, bookingID uuid.UUID) (*models.CouponRedemption, error)
}

// ValidateResult is the preview answer. Amounts are set only when valid.
type ValidateResult struct {
	Valid          bool               `json:"valid"`
	Reason         enums.CouponReason `json:"reason"`
	DiscountAmount *decimal.Decimal   `json:"discount_amount,omitempty"`
	Total          *decimal.Decimal   `json:"total,omitempty"`
}

// ReserveResult is the hold answer.
type ReserveResult struct {
	Valid                bool               `json:"valid"`
	Reason               enums.CouponReason `json:"reason"`
	ReservationID        *uuid.UUID         `json:"reservation_id,omitempty"`
	ReservationExpiresAt *time.Time         `json:"reservation_expires_at,omitempty"`
	DiscountAmount       *decimal.Decimal   `json:"discount_amount,omitempty"`
	Total                *decimal.Decimal   `json:"total,omitempty"`
}

// ReleaseResult reports whether a hold was given back.
type ReleaseResult struct {
	Released bool `json:"released"`
}

// Throttled reports whether the attempt was rejected by the limiter.
func (r *ValidateResult) Throttled() bool {
	return r != nil && r.Reason == enums.CouponReasonRateLimited
}

// Throttled reports whether the attempt was rejected by the limiter.
func (r *ReserveResult) Throttled() bool {
	return r != nil && r.Reason == enums.CouponReasonRateLimited
}

type service struct {
	manager  *Manager
	limiter  Limiter
	attempts *AttemptLog
	observer Observer
	hasher   *security.Hasher
	logg     *logger.Logger
}

// NewService wires the manager behind the limiter and attempt log. A nil
// observer disables metrics.
func NewService(manager *Manager, limiter Limiter, attempts *AttemptLog, observer Observer, hasher *security.Hasher, logg *logger.Logger) (Service, error) {
	if manager == nil {
		return nil, fmt.Errorf("coupon manager required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt log required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher required")
	}
	return &service{
		manager:  manager,
		limiter:  limiter,
		attempts: attempts,
		observer: observer,
		hasher:   hasher,
		logg:     logg,
	}, nil
}

func (s *service) Validate(ctx context.Context, req Request, origin Origin) (*ValidateResult, error) {
	req = req.normalized()
	attempt := Attempt{Operation: enums.CouponOperationValidate, Code: req.Code, Origin: origin, Identity: req.identity()}

	allowed, err := s.allow(ctx, ratelimit.PolicyValidate, attempt)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &ValidateResult{Reason: enums.CouponReasonRateLimited}, nil
	}

	eval, err := s.manager.Preview(ctx, req)
	if err != nil {
		s.recordError(ctx, attempt, err)
		return nil, err
	}
	s.record(ctx, attempt, eval)

	out := &ValidateResult{Valid: eval.Valid, Reason: eval.Reason}
	if eval.Valid {
		out.DiscountAmount = &eval.DiscountAmount
		out.Total = &eval.Total
	}
	return out, nil
}

func (s *service) Reserve(ctx context.Context, req Request, origin Origin) (*ReserveResult, error) {
	req = req.normalized()
	attempt := Attempt{Operation: enums.CouponOperationReserve, Code: req.Code, Origin: origin, Identity: req.identity()}

	allowed, err := s.allow(ctx, ratelimit.PolicyReserve, attempt)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &ReserveResult{Reason: enums.CouponReasonRateLimited}, nil
	}

	res, err := s.manager.Reserve(ctx, req)
	if err != nil {
		s.recordError(ctx, attempt, err)
		return nil, err
	}
	s.record(ctx, attempt, res.Evaluation)

	out := &ReserveResult{Valid: res.Valid, Reason: res.Reason}
	if res.Valid {
		out.ReservationID = res.RedemptionID
		out.ReservationExpiresAt = res.ExpiresAt
		out.DiscountAmount = &res.DiscountAmount
		out.Total = &res.Total
	}
	return out, nil
}

func (s *service) Release(ctx context.Context, redemptionID uuid.UUID, guestEmail string) (*ReleaseResult, error) {
	released, err := s.manager.Release(ctx, redemptionID, guestEmail)
	if err != nil {
		return nil, err
	}
	return &ReleaseResult{Released: released}, nil
}

func (s *service) Confirm(ctx context.Context, redemptionID, bookingID uuid.UUID) (*models.CouponRedemption, error) {
	return s.manager.Confirm(ctx, redemptionID, bookingID)
}

// allow consults the limiter with the identity hashed, and records throttled attempts.
func (s *service) allow(ctx context.Context, policy string, attempt Attempt) (bool, error) {
	identity := ""
	if attempt.Identity != "" {
		identity = s.hasher.Sum(security.DomainIdentity, attempt.Identity)
	}
	decision, err := s.limiter.Allow(ctx, policy, attempt.Origin.IP, identity)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "policy", policy), "coupons: rate limiter", err)
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable")
	}
	if decision.Allowed {
		return true, nil
	}

	attempt.Result = enums.CouponAttemptResultThrottled
	attempt.Reason = enums.CouponReasonRateLimited
	s.persist(ctx, attempt)
	if s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"policy": policy,
			"scope":  decision.Scope,
			"count":  decision.Count,
		}), "coupon attempt throttled")
	}
	return false, nil
}

func (s *service) record(ctx context.Context, attempt Attempt, eval Evaluation) {
	attempt.CouponID = eval.CouponID
	attempt.Reason = eval.Reason
	attempt.Result = enums.CouponAttemptResultRejected
	if eval.Valid {
		attempt.Result = enums.CouponAttemptResultAccepted
	}
	s.persist(ctx, attempt)
}

// recordError writes failed attempts. Malformed requests are rejections with
// INVALID_REQUEST; anything else is an ERROR row.
func (s *service) recordError(ctx context.Context, attempt Attempt, err error) {
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		attempt.Result = enums.CouponAttemptResultRejected
		attempt.Reason = enums.CouponReasonInvalidRequest
		s.persist(ctx, attempt)
		return
	}
	attempt.Result = enums.CouponAttemptResultError
	s.persist(ctx, attempt)
}

func (s *service) persist(ctx context.Context, attempt Attempt) {
	s.attempts.Record(ctx, attempt)
	if s.observer != nil {
		s.observer.ObserveAttempt(attempt.Operation.String(), attempt.Result.String(), attempt.Reason.String())
	}
}
