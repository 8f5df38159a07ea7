package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jdangi/portfolio-api/internal/models"
	pkgauth "github.com/jdangi/portfolio-api/pkg/auth"
	pkglogger "github.com/jdangi/portfolio-api/pkg/logger"
)

// Default first-run credentials. The bootstrap flow expects the operator to
// log in with these once and change them immediately.
const (
	DefaultAdminName     = "Portfolio Admin"
	DefaultAdminEmail    = "admin@portfolio.com"
	DefaultAdminPassword = "admin123456"
)

// SetupRepository defines the store operations first-run setup needs.
type SetupRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
}

// SetupService creates the first administrator account. It only ever succeeds
// while the store holds zero accounts.
type SetupService struct {
	repo        SetupRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewSetupService creates a new SetupService
func NewSetupService(repo SetupRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *SetupService {
	return &SetupService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// NeedsSetup reports whether no administrator account exists yet.
func (s *SetupService) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count admins", slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return count == 0, nil
}

// CreateInitialAdmin bootstraps the first super_admin with the fixed default
// credentials. Once any account exists it fails with ErrAdminExists and
// creates nothing; a unique-email violation from a concurrent setup call maps
// to the same error.
func (s *SetupService) CreateInitialAdmin(ctx context.Context) (*models.Admin, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count admins", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if count > 0 {
		return nil, models.ErrAdminExists
	}

	hash, err := pkgauth.HashPassword(DefaultAdminPassword)
	if err != nil {
		s.logger.Error("failed to hash default password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	admin, err := s.repo.Create(ctx, &models.Admin{
		Name:         DefaultAdminName,
		Email:        DefaultAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrAdminExists
		}
		s.logger.Error("failed to create initial admin", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("initial admin created", slog.String("admin_id", admin.ID))
	s.auditLogger.LogAccountAction("initial_admin_created", admin.ID, map[string]string{
		"role": admin.Role,
	})

	return admin, nil
}
