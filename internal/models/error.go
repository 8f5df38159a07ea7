package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountInactive = errors.New("account is deactivated")
	ErrAccountLocked   = errors.New("account is temporarily locked")

	// Session errors
	ErrNoRefreshToken      = errors.New("refresh token not provided")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Setup errors
	ErrAdminExists = errors.New("admin user already exists")

	// Rate limiting
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Machine-readable codes returned in the error envelope. Handlers and the
// request gate map sentinel errors onto these; they never invent ad-hoc
// code strings.
const (
	CodeNoToken                 = "NO_TOKEN"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeAccountInactive         = "ACCOUNT_INACTIVE"
	CodeAccountLocked           = "ACCOUNT_LOCKED"
	CodeNoRefreshToken          = "NO_REFRESH_TOKEN"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeAuthRequired            = "AUTH_REQUIRED"
	CodeAuthFailed              = "AUTH_FAILED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeMissingCredentials      = "MISSING_CREDENTIALS"
	CodeAdminExists             = "ADMIN_EXISTS"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeNotFound                = "NOT_FOUND"
	CodeInternalError           = "INTERNAL_ERROR"
)
