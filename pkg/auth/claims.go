package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	IsSuperuser bool
	CompanyID   *uuid.UUID
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID  `json:"user_id"`
	IsSuperuser bool       `json:"is_superuser"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}
