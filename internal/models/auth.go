package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Standard claim values shared by access and refresh tokens.
const (
	TokenIssuer   = "portfolio-admin"
	TokenAudience = "portfolio-app"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenClaims struct {
	Type    string `json:"type"`
	AdminID string `json:"admin_id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
