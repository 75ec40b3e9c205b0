package enums

import "fmt"

// CouponOperation names the coupon call site an attempt was made against.
type CouponOperation string

const (
	CouponOperationValidate CouponOperation = "validate"
	CouponOperationReserve  CouponOperation = "reserve"
)

var validCouponOperations = []CouponOperation{
	CouponOperationValidate,
	CouponOperationReserve,
}

// String implements fmt.Stringer.
func (o CouponOperation) String() string {
	return string(o)
}

// IsValid reports whether the value is a known CouponOperation.
func (o CouponOperation) IsValid() bool {
	for _, candidate := range validCouponOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseCouponOperation converts raw input into a CouponOperation.
func ParseCouponOperation(value string) (CouponOperation, error) {
	for _, candidate := range validCouponOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon operation %q", value)
}
