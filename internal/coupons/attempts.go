package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
	"github.com/harborstay/booking-backend/pkg/logger"
	"github.com/harborstay/booking-backend/pkg/security"
)

// Origin describes the client behind a coupon attempt.
type Origin struct {
	IP        string
	UserAgent string
}

// Attempt is one validate or reserve call as written to the attempt log.
type Attempt struct {
	Operation enums.CouponOperation
	Code      string
	CouponID  *uuid.UUID
	Origin    Origin
	Identity  string
	Result    enums.CouponAttemptResult
	Reason    enums.CouponReason
}

// AttemptLog writes hashed attempt records. Write failures are logged and
// swallowed so telemetry never fails a checkout.
type AttemptLog struct {
	repo   Repository
	hasher *security.Hasher
	logg   *logger.Logger
}

// NewAttemptLog builds an attempt log writer.
func NewAttemptLog(repo Repository, hasher *security.Hasher, logg *logger.Logger) *AttemptLog {
	return &AttemptLog{repo: repo, hasher: hasher, logg: logg}
}

// Record persists a.
func (l *AttemptLog) Record(ctx context.Context, a Attempt) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &models.CouponAttemptLog{
		Operation:      a.Operation,
		CouponID:       a.CouponID,
		CodeHashPrefix: hashPrefix(l.hasher.CouponCode(NormalizeCode(a.Code))),
		IPHash:         l.hasher.Sum(security.DomainIP, a.Origin.IP),
		UserAgentHash:  l.hasher.Optional(security.DomainUserAgent, a.Origin.UserAgent),
		IdentityHash:   l.hasher.Optional(security.DomainIdentity, a.Identity),
		Result:         a.Result,
		Reason:         a.Reason,
	}
	if err := l.repo.CreateAttempt(ctx, entry); err != nil && l.logg != nil {
		l.logg.Error(l.logg.WithField(ctx, "operation", a.Operation.String()), "coupons: record attempt", err)
	}
}

// Purge deletes up to limit attempt rows older than cutoff.
func (l *AttemptLog) Purge(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	return l.repo.DeleteAttemptsBefore(ctx, cutoff, limit)
}
