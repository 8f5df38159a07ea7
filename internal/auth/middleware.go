package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jdangi/portfolio-api/internal/models"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AdminContextKey is the key for storing the authenticated admin in context
	AdminContextKey contextKey = "admin"
)

// AdminFetcher loads the admin identity referenced by a verified token. The
// projection excludes the password hash and session set so downstream
// handlers never see credential material.
type AdminFetcher interface {
	GetProjectionByID(ctx context.Context, id string) (*models.Admin, error)
}

// tokenExtractors is the ordered list of places a request may carry the
// access token. First match wins: the site-wide cookie, then the
// Authorization header.
var tokenExtractors = []func(*http.Request) string{
	func(r *http.Request) string {
		token, err := GetAccessTokenCookie(r)
		if err != nil {
			return ""
		}
		return token
	},
	func(r *http.Request) string {
		return ExtractTokenFromHeader(r.Header.Get("Authorization"))
	},
}

func extractToken(r *http.Request) string {
	for _, extract := range tokenExtractors {
		if token := extract(r); token != "" {
			return token
		}
	}
	return ""
}

// gateResult is the outcome of running the authentication steps once, shared
// by the enforcing and optional variants of the gate.
type gateResult struct {
	admin   *models.Admin
	status  int
	code    string
	message string
}

func runGate(r *http.Request, tm *TokenManager, repo AdminFetcher) gateResult {
	token := extractToken(r)
	if token == "" {
		return gateResult{status: http.StatusUnauthorized, code: models.CodeNoToken,
			message: "Access denied. No authentication token provided."}
	}

	claims, err := tm.VerifyAccessToken(token)
	if err != nil {
		if IsExpired(err) {
			return gateResult{status: http.StatusUnauthorized, code: models.CodeTokenExpired,
				message: "Access denied. Token has expired."}
		}
		return gateResult{status: http.StatusUnauthorized, code: models.CodeInvalidToken,
			message: "Access denied. Invalid token."}
	}

	admin, err := repo.GetProjectionByID(r.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return gateResult{status: http.StatusUnauthorized, code: models.CodeUserNotFound,
				message: "Access denied. Admin user not found."}
		}
		return gateResult{status: http.StatusInternalServerError, code: models.CodeInternalError,
			message: "Internal server error"}
	}

	if !admin.IsActive {
		return gateResult{status: http.StatusUnauthorized, code: models.CodeAccountInactive,
			message: "Access denied. Account is deactivated."}
	}

	if admin.Locked(time.Now()) {
		return gateResult{status: http.StatusUnauthorized, code: models.CodeAccountLocked,
			message: "Access denied. Account is temporarily locked."}
	}

	return gateResult{admin: admin}
}

// RequireAdmin validates the access token and injects the admin identity
// into the request context, rejecting the request otherwise.
func RequireAdmin(tm *TokenManager, repo AdminFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := runGate(r, tm, repo)
			if res.admin == nil {
				pkghttp.WriteError(w, res.status, res.code, res.message)
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, res.admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth runs the same checks but never rejects: on any failure the
// request proceeds without an attached identity, letting handlers behave
// differently for authenticated and anonymous callers.
func OptionalAuth(tm *TokenManager, repo AdminFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := runGate(r, tm, repo)
			if res.admin != nil {
				r = r.WithContext(context.WithValue(r.Context(), AdminContextKey, res.admin))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole enforces role-based access after RequireAdmin. Composing it
// without a prior gate is a programming error and rejects with AUTH_REQUIRED.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := GetAdminFromContext(r)
			if admin == nil {
				pkghttp.WriteUnauthorized(w, models.CodeAuthRequired, "Access denied. Authentication required.")
				return
			}

			for _, role := range roles {
				if admin.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, models.CodeInsufficientPermissions, "Access denied. Insufficient permissions.")
		})
	}
}

// GetAdminFromContext extracts the authenticated admin from request context
func GetAdminFromContext(r *http.Request) *models.Admin {
	admin, ok := r.Context().Value(AdminContextKey).(*models.Admin)
	if !ok {
		return nil
	}
	return admin
}
