package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSetupCreateAdmin(t *testing.T) {
	svc := &MockSetupService{
		CreateInitialAdminFunc: func(ctx context.Context) (*models.Admin, error) {
			return &models.Admin{
				ID:       "admin-1",
				Name:     "Portfolio Admin",
				Email:    "admin@portfolio.com",
				Role:     models.RoleSuperAdmin,
				IsActive: true,
			}, nil
		},
	}
	handler := NewSetupHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/api/setup/admin", nil)
	w := httptest.NewRecorder()

	handler.CreateAdmin(w, req)

	AssertSuccessResponse(t, w, http.StatusCreated)
}

func TestSetupCreateAdminAlreadyExists(t *testing.T) {
	calls := 0
	svc := &MockSetupService{
		CreateInitialAdminFunc: func(ctx context.Context) (*models.Admin, error) {
			calls++
			if calls == 1 {
				return &models.Admin{ID: "admin-1", Email: "admin@portfolio.com", Role: models.RoleSuperAdmin}, nil
			}
			return nil, models.ErrAdminExists
		},
	}
	handler := NewSetupHandler(svc)

	// First call bootstraps; second call must fail without creating anything.
	w := httptest.NewRecorder()
	handler.CreateAdmin(w, NewTestRequest(t, http.MethodPost, "/api/setup/admin", nil))
	AssertSuccessResponse(t, w, http.StatusCreated)

	w = httptest.NewRecorder()
	handler.CreateAdmin(w, NewTestRequest(t, http.MethodPost, "/api/setup/admin", nil))
	AssertErrorResponse(t, w, http.StatusBadRequest, models.CodeAdminExists)
	assert.Equal(t, 2, calls)
}

func TestSetupStatus(t *testing.T) {
	tests := []struct {
		name   string
		needed bool
	}{
		{"setup required", true},
		{"setup done", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSetupService{
				NeedsSetupFunc: func(ctx context.Context) (bool, error) {
					return tt.needed, nil
				},
			}
			handler := NewSetupHandler(svc)

			w := httptest.NewRecorder()
			handler.Status(w, NewTestRequest(t, http.MethodGet, "/api/setup/status", nil))

			resp := AssertSuccessResponse(t, w, http.StatusOK)
			data, ok := resp.Data.(map[string]interface{})
			assert.True(t, ok)
			assert.Equal(t, tt.needed, data["setupRequired"])
		})
	}
}
