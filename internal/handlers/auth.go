package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/jdangi/portfolio-api/internal/services"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// AuthServiceInterface defines the interface for authentication business logic
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, email, password, ipAddress string) (services.LoginResult, error)
	IssueSession(ctx context.Context, admin *models.Admin) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, *models.Admin, error)
	Logout(ctx context.Context, admin *models.Admin, refreshToken string) error
}

// AuthHandler handles the admin session endpoints.
type AuthHandler struct {
	service   AuthServiceInterface
	cookieCfg auth.CookieConfig
	ipConfig  *pkghttp.IPConfig
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookieCfg auth.CookieConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		cookieCfg: cookieCfg,
		ipConfig:  ipConfig,
		logger:    logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminResponse represents an admin identity in HTTP responses. The password
// hash and session set are never serialized.
type AdminResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	LastLogin string `json:"lastLogin,omitempty"`
}

// LoginResponse is the data payload of a successful login or refresh.
type LoginResponse struct {
	Admin     *AdminResponse `json:"admin,omitempty"`
	Token     string         `json:"token"`
	ExpiresIn int            `json:"expiresIn"`
}

// Login handles POST /api/auth/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, models.CodeMissingCredentials, "Email and password are required")
		return
	}

	if req.Email == "" || req.Password == "" {
		pkghttp.WriteBadRequest(w, models.CodeMissingCredentials, "Email and password are required")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Authenticate(r.Context(), req.Email, req.Password, ip)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if !result.Success() {
		h.writeLoginFailure(w, result.Reason)
		return
	}

	session, err := h.service.IssueSession(r.Context(), result.Admin)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.SetAccessTokenCookie(w, session.AccessToken, session.ExpiresIn, h.cookieCfg)
	auth.SetRefreshTokenCookie(w, session.RefreshToken, session.RefreshExpiresIn, h.cookieCfg)

	pkghttp.WriteSuccess(w, http.StatusOK, "Login successful", LoginResponse{
		Admin:     adminModelToResponse(result.Admin),
		Token:     session.AccessToken,
		ExpiresIn: session.ExpiresIn,
	})
}

// writeLoginFailure maps an internal failure reason onto the client-facing
// error. Unknown-email and wrong-password collapse into one generic message
// so responses do not reveal which accounts exist.
func (h *AuthHandler) writeLoginFailure(w http.ResponseWriter, reason models.FailureReason) {
	switch reason {
	case models.ReasonAccountInactive:
		pkghttp.WriteUnauthorized(w, models.CodeAccountInactive, "Account is deactivated. Contact the administrator.")
	case models.ReasonAccountLocked:
		pkghttp.WriteUnauthorized(w, models.CodeAccountLocked, "Account is temporarily locked. Try again later.")
	case models.ReasonMaxAttempts:
		pkghttp.WriteUnauthorized(w, models.CodeAccountLocked, "Account locked due to too many failed login attempts. Try again in 2 hours.")
	default:
		pkghttp.WriteUnauthorized(w, models.CodeAuthFailed, "Invalid email or password")
	}
}

// Logout handles POST /api/auth/logout. It runs behind the optional gate:
// revocation needs an identity, but clearing cookies must work without one,
// so a logout with no session still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetAdminFromContext(r)

	if admin != nil {
		refreshToken, err := auth.GetRefreshTokenCookie(r)
		if err == nil && refreshToken != "" {
			if err := h.service.Logout(r.Context(), admin, refreshToken); err != nil {
				// Best effort: the cookies are cleared either way, and the
				// token ages out of the session set at its TTL.
				h.logger.Error("refresh token revocation failed",
					slog.String("admin_id", admin.ID), slog.Any("error", err))
			}
		}
	}

	auth.ClearSessionCookies(w, h.cookieCfg)
	pkghttp.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from its
// path-scoped cookie only, never from the request body or headers.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.GetRefreshTokenCookie(r)
	if err != nil || refreshToken == "" {
		pkghttp.WriteUnauthorized(w, models.CodeNoRefreshToken, "Refresh token not provided")
		return
	}

	session, _, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoRefreshToken):
			pkghttp.WriteUnauthorized(w, models.CodeNoRefreshToken, "Refresh token not provided")
		case errors.Is(err, models.ErrInvalidRefreshToken):
			// The session is unrecoverable; drop the cookies so the client
			// falls back to a fresh login.
			auth.ClearSessionCookies(w, h.cookieCfg)
			pkghttp.WriteUnauthorized(w, models.CodeInvalidRefreshToken, "Invalid or expired refresh token")
		case errors.Is(err, models.ErrAccountInactive):
			pkghttp.WriteUnauthorized(w, models.CodeAccountInactive, "Account is deactivated. Contact the administrator.")
		case errors.Is(err, models.ErrAccountLocked):
			pkghttp.WriteUnauthorized(w, models.CodeAccountLocked, "Account is temporarily locked. Try again later.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetAccessTokenCookie(w, session.AccessToken, session.ExpiresIn, h.cookieCfg)
	auth.SetRefreshTokenCookie(w, session.RefreshToken, session.RefreshExpiresIn, h.cookieCfg)

	pkghttp.WriteSuccess(w, http.StatusOK, "Token refreshed", LoginResponse{
		Token:     session.AccessToken,
		ExpiresIn: session.ExpiresIn,
	})
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetAdminFromContext(r)
	pkghttp.WriteSuccess(w, http.StatusOK, "Token is valid", map[string]interface{}{
		"admin": adminModelToResponse(admin),
	})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetAdminFromContext(r)
	pkghttp.WriteSuccess(w, http.StatusOK, "Profile retrieved", map[string]interface{}{
		"admin": adminModelToResponse(admin),
	})
}

// Check handles GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetAdminFromContext(r)
	pkghttp.WriteSuccess(w, http.StatusOK, "Authenticated", map[string]interface{}{
		"authenticated": true,
		"admin":         adminModelToResponse(admin),
	})
}

func adminModelToResponse(admin *models.Admin) *AdminResponse {
	resp := &AdminResponse{
		ID:    admin.ID,
		Name:  admin.Name,
		Email: admin.Email,
		Role:  admin.Role,
	}
	if admin.LastLogin != nil {
		resp.LastLogin = admin.LastLogin.UTC().Format(time.RFC3339)
	}
	return resp
}
