package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jdangi/portfolio-api/internal/models"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdminFetcher struct {
	admins map[string]*models.Admin
	err    error
}

func (m *mockAdminFetcher) GetProjectionByID(ctx context.Context, id string) (*models.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	admin, ok := m.admins[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	// Projections never carry the hash
	cp := *admin
	cp.PasswordHash = ""
	return &cp, nil
}

func activeAdmin(id string) *models.Admin {
	return &models.Admin{
		ID:       id,
		Name:     "Test Admin",
		Email:    "a@x.com",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
}

func okHandler(captured **models.Admin) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = GetAdminFromContext(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func assertGateError(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	assert.Equal(t, wantStatus, w.Code)

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, wantCode, resp.Code)
}

func TestRequireAdmin_NoToken(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{}}

	req := httptest.NewRequest("GET", "/api/messages", nil)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeNoToken)
}

func TestRequireAdmin_BearerToken(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	var got *models.Admin
	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(&got)).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "admin-1", got.ID)
	assert.Empty(t, got.PasswordHash, "projection must not carry the password hash")
}

func TestRequireAdmin_CookieToken(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestRequireAdmin_CookieWinsOverHeader(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	valid, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	// Extractors run in order: a garbage cookie shadows a valid header token.
	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
	req.Header.Set("Authorization", "Bearer "+valid)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeInvalidToken)
}

func TestRequireAdmin_ExpiredToken(t *testing.T) {
	expired := NewTokenManager(testAccessSecret, testRefreshSecret, -1*time.Minute, time.Hour)
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := expired.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeTokenExpired)
}

func TestRequireAdmin_WrongKey(t *testing.T) {
	other := NewTokenManager("another-secret-32-characters-ok!", "x-refresh", 15*time.Minute, time.Hour)
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := other.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeInvalidToken)
}

func TestRequireAdmin_RefreshTokenRejected(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := tm.GenerateRefreshToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeInvalidToken)
}

func TestRequireAdmin_UserNotFound(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{}}

	token, err := tm.GenerateAccessToken("ghost", "g@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeUserNotFound)
}

func TestRequireAdmin_InactiveAccount(t *testing.T) {
	tm := newTestTokenManager()
	admin := activeAdmin("admin-1")
	admin.IsActive = false
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": admin}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeAccountInactive)
}

func TestRequireAdmin_LockedAccount(t *testing.T) {
	tm := newTestTokenManager()
	admin := activeAdmin("admin-1")
	until := time.Now().Add(time.Hour)
	admin.LockUntil = &until
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": admin}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeAccountLocked)
}

func TestRequireAdmin_ExpiredLockPasses(t *testing.T) {
	tm := newTestTokenManager()
	admin := activeAdmin("admin-1")
	until := time.Now().Add(-time.Minute)
	admin.LockUntil = &until
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": admin}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	RequireAdmin(tm, repo)(okHandler(nil)).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	tests := []struct {
		name    string
		prepare func(r *http.Request)
	}{
		{"no token", func(r *http.Request) {}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		}},
		{"unknown admin", func(r *http.Request) {
			token, _ := tm.GenerateAccessToken("ghost", "g@x.com", models.RoleAdmin)
			r.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.Admin
			req := httptest.NewRequest("GET", "/api/profile", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()

			OptionalAuth(tm, repo)(okHandler(&got)).ServeHTTP(w, req)

			assert.Equal(t, 200, w.Code)
			assert.Nil(t, got)
		})
	}
}

func TestOptionalAuth_AttachesIdentity(t *testing.T) {
	tm := newTestTokenManager()
	repo := &mockAdminFetcher{admins: map[string]*models.Admin{"admin-1": activeAdmin("admin-1")}}

	token, err := tm.GenerateAccessToken("admin-1", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	var got *models.Admin
	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	OptionalAuth(tm, repo)(okHandler(&got)).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "admin-1", got.ID)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
		wantCode   string
	}{
		{"matching role", models.RoleAdmin, []string{models.RoleAdmin, models.RoleSuperAdmin}, 200, ""},
		{"super admin only", models.RoleAdmin, []string{models.RoleSuperAdmin}, 403, models.CodeInsufficientPermissions},
		{"super admin passes", models.RoleSuperAdmin, []string{models.RoleSuperAdmin}, 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := activeAdmin("admin-1")
			admin.Role = tt.role

			req := httptest.NewRequest("DELETE", "/api/messages/1", nil)
			req = req.WithContext(context.WithValue(req.Context(), AdminContextKey, admin))
			w := httptest.NewRecorder()

			RequireRole(tt.allowed...)(okHandler(nil)).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var resp pkghttp.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRequireRole_WithoutGateIsAuthRequired(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/messages/1", nil)
	w := httptest.NewRecorder()

	RequireRole(models.RoleAdmin)(okHandler(nil)).ServeHTTP(w, req)

	assertGateError(t, w, 401, models.CodeAuthRequired)
}
