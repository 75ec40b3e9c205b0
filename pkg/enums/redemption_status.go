package enums

import "fmt"

// RedemptionStatus is the lifecycle of a coupon hold.
type RedemptionStatus string

const (
	RedemptionStatusReserved  RedemptionStatus = "RESERVED"
	RedemptionStatusConfirmed RedemptionStatus = "CONFIRMED"
	RedemptionStatusReleased  RedemptionStatus = "RELEASED"
)

var validRedemptionStatuss = []RedemptionStatus{
	RedemptionStatusReserved,
	RedemptionStatusConfirmed,
	RedemptionStatusReleased,
}

// String implements fmt.Stringer.
func (s RedemptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RedemptionStatus.
func (s RedemptionStatus) IsValid() bool {
	for _, candidate := range validRedemptionStatuss {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRedemptionStatus converts raw input into a RedemptionStatus.
func ParseRedemptionStatus(value string) (RedemptionStatus, error) {
	for _, candidate := range validRedemptionStatuss {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid redemption status %q", value)
}
