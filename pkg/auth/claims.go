package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/harborstay/booking-backend/pkg/enums"
)

// OperatorTokenPayload captures the data available when minting an operator JWT.
type OperatorTokenPayload struct {
	OperatorID string
	Role       enums.OperatorRole
	JTI        string
}

// OperatorClaims represents the typed JWT carried by back-office operators.
type OperatorClaims struct {
	OperatorID string             `json:"operator_id"`
	Role       enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
