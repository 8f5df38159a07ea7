package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/models"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// ProfileServiceInterface defines the interface for the public profile
type ProfileServiceInterface interface {
	Get(ctx context.Context, includePrivate bool) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// ProfileHandler handles the public profile endpoints.
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// UpdateProfileRequest represents the profile update body
type UpdateProfileRequest struct {
	FullName string            `json:"fullName" validate:"required,max=100"`
	Headline string            `json:"headline" validate:"max=200"`
	Bio      string            `json:"bio" validate:"max=5000"`
	Email    string            `json:"email" validate:"omitempty,email"`
	Location string            `json:"location" validate:"max=100"`
	Socials  map[string]string `json:"socials"`
}

// ProfileResponse represents the profile in HTTP responses
type ProfileResponse struct {
	FullName  string            `json:"fullName"`
	Headline  string            `json:"headline"`
	Bio       string            `json:"bio"`
	Email     string            `json:"email,omitempty"`
	Location  string            `json:"location"`
	Socials   map[string]string `json:"socials"`
	UpdatedAt string            `json:"updatedAt"`
}

// Get handles GET /api/profile. It runs behind the optional gate: anonymous
// callers get the public fields, an authenticated admin also sees the
// contact email.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	includePrivate := auth.GetAdminFromContext(r) != nil

	profile, err := h.service.Get(r.Context(), includePrivate)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, models.CodeNotFound, "Profile not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile retrieved", profileModelToResponse(profile))
}

// Update handles PUT /api/profile (admin)
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, models.CodeValidationFailed, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, models.CodeValidationFailed, err.Error())
		return
	}

	profile, err := h.service.Update(r.Context(), &models.Profile{
		FullName: req.FullName,
		Headline: req.Headline,
		Bio:      req.Bio,
		Email:    req.Email,
		Location: req.Location,
		Socials:  req.Socials,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Profile updated", profileModelToResponse(profile))
}

func profileModelToResponse(profile *models.Profile) *ProfileResponse {
	return &ProfileResponse{
		FullName:  profile.FullName,
		Headline:  profile.Headline,
		Bio:       profile.Bio,
		Email:     profile.Email,
		Location:  profile.Location,
		Socials:   profile.Socials,
		UpdatedAt: profile.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
