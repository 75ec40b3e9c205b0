package enums

import "fmt"

// OperatorRole is the permission level carried in operator tokens.
type OperatorRole string

const (
	OperatorRoleAdmin          OperatorRole = "admin"
	OperatorRoleRevenueManager OperatorRole = "revenue_manager"
	OperatorRoleFrontDesk      OperatorRole = "front_desk"
)

var validOperatorRoles = []OperatorRole{
	OperatorRoleAdmin,
	OperatorRoleRevenueManager,
	OperatorRoleFrontDesk,
}

// String implements fmt.Stringer.
func (r OperatorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known OperatorRole.
func (r OperatorRole) IsValid() bool {
	for _, candidate := range validOperatorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOperatorRole converts raw input into a OperatorRole.
func ParseOperatorRole(value string) (OperatorRole, error) {
	for _, candidate := range validOperatorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operator role %q", value)
}
