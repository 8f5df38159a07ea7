package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jdangi/portfolio-api/internal/models"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// SetupServiceInterface defines the interface for first-run bootstrap
type SetupServiceInterface interface {
	NeedsSetup(ctx context.Context) (bool, error)
	CreateInitialAdmin(ctx context.Context) (*models.Admin, error)
}

// SetupHandler handles the first-run bootstrap endpoints.
type SetupHandler struct {
	service SetupServiceInterface
}

// NewSetupHandler creates a new SetupHandler
func NewSetupHandler(service SetupServiceInterface) *SetupHandler {
	return &SetupHandler{service: service}
}

// CreateAdmin handles POST /api/setup/admin. It only succeeds while zero
// accounts exist; afterwards every call is a 400 ADMIN_EXISTS.
func (h *SetupHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.CreateInitialAdmin(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrAdminExists) {
			pkghttp.WriteBadRequest(w, models.CodeAdminExists, "Admin user already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Admin user created. Log in and change the default password immediately.", map[string]interface{}{
		"admin": adminModelToResponse(admin),
		"email": admin.Email,
	})
}

// Status handles GET /api/setup/status
func (h *SetupHandler) Status(w http.ResponseWriter, r *http.Request) {
	needed, err := h.service.NeedsSetup(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Setup status", map[string]interface{}{
		"setupRequired": needed,
	})
}
