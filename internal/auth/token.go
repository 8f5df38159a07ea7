package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jdangi/portfolio-api/internal/models"
)

// TokenManager signs and verifies the access/refresh token pair. The two
// token kinds use distinct signing keys, so a leaked access secret cannot be
// used to forge refresh tokens and vice versa.
type TokenManager struct {
	accessSecret  string
	refreshSecret string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (tm *TokenManager) AccessExpiry() time.Duration  { return tm.accessExpiry }
func (tm *TokenManager) RefreshExpiry() time.Duration { return tm.refreshExpiry }

// GenerateAccessToken mints a short-lived access token for an admin identity.
func (tm *TokenManager) GenerateAccessToken(adminID, email, role string) (string, error) {
	return tm.generate(models.TokenTypeAccess, adminID, email, role, tm.accessSecret, tm.accessExpiry)
}

// GenerateRefreshToken mints a long-lived refresh token signed with the
// refresh key.
func (tm *TokenManager) GenerateRefreshToken(adminID, email, role string) (string, error) {
	return tm.generate(models.TokenTypeRefresh, adminID, email, role, tm.refreshSecret, tm.refreshExpiry)
}

func (tm *TokenManager) generate(tokenType, adminID, email, role, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Type:    tokenType,
		AdminID: adminID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    models.TokenIssuer,
			Audience:  jwt.ClaimStrings{models.TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// VerifyAccessToken checks signature, issuer, audience, and expiry against
// the access key and returns the claims.
func (tm *TokenManager) VerifyAccessToken(tokenString string) (*models.TokenClaims, error) {
	return tm.verify(tokenString, models.TokenTypeAccess, tm.accessSecret)
}

// VerifyRefreshToken does the same against the refresh key.
func (tm *TokenManager) VerifyRefreshToken(tokenString string) (*models.TokenClaims, error) {
	return tm.verify(tokenString, models.TokenTypeRefresh, tm.refreshSecret)
}

func (tm *TokenManager) verify(tokenString, wantType, secret string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(models.TokenIssuer),
		jwt.WithAudience(models.TokenAudience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != wantType {
		return nil, fmt.Errorf("invalid token: expected %s token", wantType)
	}

	return claims, nil
}

// IsExpired classifies a verification failure as an expiry (as opposed to a
// bad signature or malformed token). The gate reports TOKEN_EXPIRED vs
// INVALID_TOKEN based on this.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization
// header value. Returns "" unless the header is exactly "Bearer <token>".
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return authHeader[len(prefix):]
}
