package enums

import "fmt"

// CouponReason is the machine-readable outcome of a coupon check.
type CouponReason string

const (
	CouponReasonOK                     CouponReason = "OK"
	CouponReasonNotFound               CouponReason = "NOT_FOUND"
	CouponReasonInactive               CouponReason = "INACTIVE"
	CouponReasonNotStarted             CouponReason = "NOT_STARTED"
	CouponReasonExpired                CouponReason = "EXPIRED"
	CouponReasonGuestMismatch          CouponReason = "GUEST_MISMATCH"
	CouponReasonRoomNotEligible        CouponReason = "ROOM_NOT_ELIGIBLE"
	CouponReasonChannelNotEligible     CouponReason = "CHANNEL_NOT_ELIGIBLE"
	CouponReasonMinBookingValue        CouponReason = "MIN_BOOKING_VALUE"
	CouponReasonUsageLimitReached      CouponReason = "USAGE_LIMIT_REACHED"
	CouponReasonGuestUsageLimitReached CouponReason = "GUEST_USAGE_LIMIT_REACHED"
	CouponReasonNotStackable           CouponReason = "NOT_STACKABLE"
	CouponReasonRateLimited            CouponReason = "RATE_LIMITED"
	CouponReasonInvalidRequest         CouponReason = "INVALID_REQUEST"
)

var validCouponReasons = []CouponReason{
	CouponReasonOK,
	CouponReasonNotFound,
	CouponReasonInactive,
	CouponReasonNotStarted,
	CouponReasonExpired,
	CouponReasonGuestMismatch,
	CouponReasonRoomNotEligible,
	CouponReasonChannelNotEligible,
	CouponReasonMinBookingValue,
	CouponReasonUsageLimitReached,
	CouponReasonGuestUsageLimitReached,
	CouponReasonNotStackable,
	CouponReasonRateLimited,
	CouponReasonInvalidRequest,
}

// String implements fmt.Stringer.
func (r CouponReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CouponReason.
func (r CouponReason) IsValid() bool {
	for _, candidate := range validCouponReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCouponReason converts raw input into a CouponReason.
func ParseCouponReason(value string) (CouponReason, error) {
	for _, candidate := range validCouponReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon reason %q", value)
}
