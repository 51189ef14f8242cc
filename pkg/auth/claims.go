package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CustomerID  uuid.UUID
	Email       string
	IsConfirmed bool
	Role        enums.CustomerRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to storefront clients.
type AccessTokenClaims struct {
	CustomerID  uuid.UUID          `json:"customer_id"`
	Email       string             `json:"email"`
	IsConfirmed bool               `json:"is_confirmed"`
	Role        enums.CustomerRole `json:"role"`
	jwt.RegisteredClaims
}
