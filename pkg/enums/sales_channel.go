package enums

import "fmt"

// SalesChannel identifies where a booking originated.
type SalesChannel string

const (
	SalesChannelWeb       SalesChannel = "web"
	SalesChannelMobile    SalesChannel = "mobile"
	SalesChannelPhone     SalesChannel = "phone"
	SalesChannelFrontDesk SalesChannel = "front_desk"
	SalesChannelOTA       SalesChannel = "ota"
)

var validSalesChannels = []SalesChannel{
	SalesChannelWeb,
	SalesChannelMobile,
	SalesChannelPhone,
	SalesChannelFrontDesk,
	SalesChannelOTA,
}

// String implements fmt.Stringer.
func (c SalesChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known SalesChannel.
func (c SalesChannel) IsValid() bool {
	for _, candidate := range validSalesChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseSalesChannel converts raw input into a SalesChannel.
func ParseSalesChannel(value string) (SalesChannel, error) {
	for _, candidate := range validSalesChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sales channel %q", value)
}
