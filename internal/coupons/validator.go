package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Request is a coupon check as submitted at checkout.
type Request struct {
	Code                  string
	Subtotal              decimal.Decimal
	GuestEmail            string
	GuestPhone            string
	RoomTypeID            *uuid.UUID
	Channel               string
	OtherDiscountsApplied bool
}

func (r Request) normalized() Request {
	r.Code = NormalizeCode(r.Code)
	r.GuestEmail = NormalizeEmail(r.GuestEmail)
	r.GuestPhone = NormalizePhone(r.GuestPhone)
	return r
}

// identity is the value the per-guest buckets and logs are keyed on.
func (r Request) identity() string {
	if r.GuestEmail != "" {
		return r.GuestEmail
	}
	return r.GuestPhone
}

// Usage is how many slots of a coupon are taken, globally and by the requesting guest.
type Usage struct {
	Global int64
	Guest  int64
}

// Evaluation is the eligibility verdict for one request.
type Evaluation struct {
	Valid          bool
	Reason         enums.CouponReason
	CouponID       *uuid.UUID
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

func reject(c *models.Coupon, reason enums.CouponReason) Evaluation {
	eval := Evaluation{Reason: reason}
	if c != nil {
		id := c.ID
		eval.CouponID = &id
	}
	return eval
}

// Evaluate checks a normalized request against a coupon's rules. It performs
// no I/O; usage counts are supplied by the caller.
func Evaluate(c *models.Coupon, req Request, usage Usage, now time.Time) Evaluation {
	if c == nil {
		return reject(nil, enums.CouponReasonNotFound)
	}
	if !c.IsActive {
		return reject(c, enums.CouponReasonInactive)
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return reject(c, enums.CouponReasonNotStarted)
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return reject(c, enums.CouponReasonExpired)
	}
	if c.GuestEmail != nil && *c.GuestEmail != "" && NormalizeEmail(*c.GuestEmail) != req.GuestEmail {
		return reject(c, enums.CouponReasonGuestMismatch)
	}
	if c.GuestPhone != nil && *c.GuestPhone != "" && NormalizePhone(*c.GuestPhone) != req.GuestPhone {
		return reject(c, enums.CouponReasonGuestMismatch)
	}
	if len(c.RoomTypeIDs) > 0 && (req.RoomTypeID == nil || !contains(c.RoomTypeIDs, req.RoomTypeID.String())) {
		return reject(c, enums.CouponReasonRoomNotEligible)
	}
	if len(c.Channels) > 0 && (req.Channel == "" || !contains(c.Channels, req.Channel)) {
		return reject(c, enums.CouponReasonChannelNotEligible)
	}
	if c.MinBookingValue.Valid && req.Subtotal.LessThan(c.MinBookingValue.Decimal) {
		return reject(c, enums.CouponReasonMinBookingValue)
	}
	if !c.Stackable && req.OtherDiscountsApplied {
		return reject(c, enums.CouponReasonNotStackable)
	}
	if c.MaxGlobalUses != nil && usage.Global >= int64(*c.MaxGlobalUses) {
		return reject(c, enums.CouponReasonUsageLimitReached)
	}
	if limit, ok := guestLimit(c); ok && req.GuestEmail != "" && usage.Guest >= int64(limit) {
		return reject(c, enums.CouponReasonGuestUsageLimitReached)
	}

	discount := Discount(c, req.Subtotal)
	id := c.ID
	return Evaluation{
		Valid:          true,
		Reason:         enums.CouponReasonOK,
		CouponID:       &id,
		DiscountAmount: discount,
		Total:          req.Subtotal.Sub(discount).Round(2),
	}
}

// Discount computes the amount taken off subtotal, never more than subtotal.
func Discount(c *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch c.Type {
	case enums.CouponTypePercent:
		amount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscountAmount.Valid && amount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			amount = c.MaxDiscountAmount.Decimal
		}
	case enums.CouponTypeFixed:
		amount = c.Value
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount.Round(2)
}

// guestLimit returns the per-guest cap. Single-use coupons without an explicit
// cap allow one use per guest.
func guestLimit(c *models.Coupon) (int, bool) {
	if c.MaxUsesPerGuest != nil {
		return *c.MaxUsesPerGuest, true
	}
	if c.SingleUse {
		return 1, true
	}
	return 0, false
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
