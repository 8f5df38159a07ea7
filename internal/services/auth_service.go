package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/models"
	pkgauth "github.com/jdangi/portfolio-api/pkg/auth"
	pkglogger "github.com/jdangi/portfolio-api/pkg/logger"
)

// AdminRepository defines the credential-store operations the authenticator
// and session issuer need.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	RecordFailedLogin(ctx context.Context, id string) (*models.Admin, error)
	RecordSuccessfulLogin(ctx context.Context, id string, now time.Time) error
	AddRefreshToken(ctx context.Context, adminID, token string) error
	RemoveRefreshToken(ctx context.Context, adminID, token string) error
	RotateRefreshToken(ctx context.Context, adminID, oldToken, newToken string) error
	HasRefreshToken(ctx context.Context, adminID, token string) (bool, error)
}

// LoginResult is the outcome of one authentication attempt. Expected failures
// carry a FailureReason instead of an error; only infrastructure faults come
// back as errors.
type LoginResult struct {
	Admin  *models.Admin
	Reason models.FailureReason
}

func (r LoginResult) Success() bool { return r.Reason == models.ReasonNone }

// Session is a freshly issued token pair. ExpiresIn and RefreshExpiresIn are
// the token lifetimes in seconds; ExpiresIn is echoed to clients and both
// drive cookie max-ages.
type Session struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int
	RefreshExpiresIn int
}

// AuthService is the authenticator and session issuer.
type AuthService struct {
	repo        AdminRepository
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo AdminRepository, tm *auth.TokenManager, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Authenticate decides one login attempt against a single account record, in
// fixed order: unknown email, inactive, locked, then the password check. A
// wrong password records the failed-attempt transition (the repository
// applies it atomically); the fifth consecutive failure locks the account for
// models.LockDuration. A correct password on an unlocked account resets the
// counter, clears any expired lock, and stamps last_login.
func (s *AuthService) Authenticate(ctx context.Context, email, password, ipAddress string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditFailure("", ipAddress, models.ReasonNotFound, nil)
			return LoginResult{Reason: models.ReasonNotFound}, nil
		}
		s.logger.Error("failed to load admin by email", slog.Any("error", err))
		return LoginResult{}, models.ErrInternalServer
	}

	if !admin.IsActive {
		s.auditFailure(admin.ID, ipAddress, models.ReasonAccountInactive, nil)
		return LoginResult{Reason: models.ReasonAccountInactive}, nil
	}

	now := time.Now()
	if admin.Locked(now) {
		s.auditFailure(admin.ID, ipAddress, models.ReasonAccountLocked, map[string]string{
			"lock_until": admin.LockUntil.UTC().Format(time.RFC3339),
		})
		return LoginResult{Reason: models.ReasonAccountLocked}, nil
	}

	if err := pkgauth.ComparePassword(admin.PasswordHash, password); err != nil {
		updated, recErr := s.repo.RecordFailedLogin(ctx, admin.ID)
		if recErr != nil {
			s.logger.Error("failed to record failed login",
				slog.String("admin_id", admin.ID), slog.Any("error", recErr))
			return LoginResult{}, models.ErrInternalServer
		}

		reason := models.ReasonPasswordIncorrect
		if updated.Locked(now) {
			reason = models.ReasonMaxAttempts
		}
		s.auditFailure(admin.ID, ipAddress, reason, map[string]string{
			"login_attempts": strconv.Itoa(updated.LoginAttempts),
		})
		return LoginResult{Reason: reason}, nil
	}

	if err := s.repo.RecordSuccessfulLogin(ctx, admin.ID, now); err != nil {
		s.logger.Error("failed to record successful login",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return LoginResult{}, models.ErrInternalServer
	}

	admin.LoginAttempts = 0
	admin.LockUntil = nil
	admin.LastLogin = &now

	s.logger.Info("admin logged in", slog.String("admin_id", admin.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		AdminID:   admin.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return LoginResult{Admin: admin}, nil
}

// IssueSession mints a token pair for an authenticated account and persists
// the refresh token into the account's session set.
func (s *AuthService) IssueSession(ctx context.Context, admin *models.Admin) (*Session, error) {
	accessToken, err := s.tm.GenerateAccessToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("failed to generate access token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.AddRefreshToken(ctx, admin.ID, refreshToken); err != nil {
		s.logger.Error("failed to persist refresh token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &Session{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        int(s.tm.AccessExpiry().Seconds()),
		RefreshExpiresIn: int(s.tm.RefreshExpiry().Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new session. The presented token
// must verify against the refresh key AND be a live member of the account's
// session set; a token that was already rotated away or revoked fails the
// membership check even though its signature still verifies. On success the
// old token is swapped for the new one atomically, so every refresh token
// value is single-use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, *models.Admin, error) {
	if refreshToken = strings.TrimSpace(refreshToken); refreshToken == "" {
		return nil, nil, models.ErrNoRefreshToken
	}

	claims, err := s.tm.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Info("refresh token verification failed", slog.Any("error", err))
		return nil, nil, models.ErrInvalidRefreshToken
	}

	admin, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrInvalidRefreshToken
		}
		s.logger.Error("failed to load admin for refresh",
			slog.String("admin_id", claims.AdminID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	live, err := s.repo.HasRefreshToken(ctx, admin.ID, refreshToken)
	if err != nil {
		s.logger.Error("failed to check refresh token membership",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}
	if !live {
		// Valid signature but not in the session set: either revoked or the
		// second use of an already-rotated token.
		s.logger.Warn("refresh with token not in session set", slog.String("admin_id", admin.ID))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType: "token_refresh",
			AdminID:   admin.ID,
			Success:   false,
			Reason:    "token_not_in_session_set",
		})
		return nil, nil, models.ErrInvalidRefreshToken
	}

	if !admin.IsActive {
		return nil, nil, models.ErrAccountInactive
	}
	if admin.Locked(time.Now()) {
		return nil, nil, models.ErrAccountLocked
	}

	accessToken, err := s.tm.GenerateAccessToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("failed to generate access token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.GenerateRefreshToken(admin.ID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("failed to generate refresh token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	// The rotation re-checks membership inside its transaction, so two
	// concurrent refreshes with the same token cannot both succeed.
	if err := s.repo.RotateRefreshToken(ctx, admin.ID, refreshToken, newRefreshToken); err != nil {
		if errors.Is(err, models.ErrInvalidRefreshToken) {
			return nil, nil, models.ErrInvalidRefreshToken
		}
		s.logger.Error("failed to rotate refresh token",
			slog.String("admin_id", admin.ID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	s.logger.Info("session refreshed", slog.String("admin_id", admin.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "token_refresh",
		AdminID:   admin.ID,
		Success:   true,
	})

	return &Session{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		ExpiresIn:        int(s.tm.AccessExpiry().Seconds()),
		RefreshExpiresIn: int(s.tm.RefreshExpiry().Seconds()),
	}, admin, nil
}

// Logout revokes the presented refresh token. A missing token or a token that
// was never in the session set is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, admin *models.Admin, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.repo.RemoveRefreshToken(ctx, admin.ID, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.logger.Info("admin logged out", slog.String("admin_id", admin.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		AdminID:   admin.ID,
		Success:   true,
	})
	return nil
}

func (s *AuthService) auditFailure(adminID, ipAddress string, reason models.FailureReason, metadata map[string]string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_failed",
		AdminID:   adminID,
		IPAddress: ipAddress,
		Success:   false,
		Reason:    reason.String(),
		Metadata:  metadata,
	})
}
