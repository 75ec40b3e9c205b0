package enums

import "fmt"

// CouponAttemptResult is the outcome recorded in the attempt log.
type CouponAttemptResult string

const (
	CouponAttemptResultAccepted  CouponAttemptResult = "ACCEPTED"
	CouponAttemptResultRejected  CouponAttemptResult = "REJECTED"
	CouponAttemptResultThrottled CouponAttemptResult = "THROTTLED"
	CouponAttemptResultError     CouponAttemptResult = "ERROR"
)

var validCouponAttemptResults = []CouponAttemptResult{
	CouponAttemptResultAccepted,
	CouponAttemptResultRejected,
	CouponAttemptResultThrottled,
	CouponAttemptResultError,
}

// String implements fmt.Stringer.
func (r CouponAttemptResult) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CouponAttemptResult.
func (r CouponAttemptResult) IsValid() bool {
	for _, candidate := range validCouponAttemptResults {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCouponAttemptResult converts raw input into a CouponAttemptResult.
func ParseCouponAttemptResult(value string) (CouponAttemptResult, error) {
	for _, candidate := range validCouponAttemptResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon attempt result %q", value)
}
