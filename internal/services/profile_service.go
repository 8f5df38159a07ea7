package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jdangi/portfolio-api/internal/models"
)

// ProfileRepository defines the store operations for the single public
// profile row.
type ProfileRepository interface {
	Get(ctx context.Context) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// ProfileService serves the public profile. The contact email is only
// included for authenticated admin callers.
type ProfileService struct {
	repo   ProfileRepository
	logger *slog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// Get returns the profile. When includePrivate is false the contact email is
// blanked so anonymous callers never see it.
func (s *ProfileService) Get(ctx context.Context, includePrivate bool) (*models.Profile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !includePrivate {
		profile.Email = ""
	}
	return profile, nil
}

// Update replaces the profile contents.
func (s *ProfileService) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	updated, err := s.repo.Upsert(ctx, profile)
	if err != nil {
		s.logger.Error("failed to update profile", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile updated")
	return updated, nil
}
