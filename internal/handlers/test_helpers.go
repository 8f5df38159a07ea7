package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/jdangi/portfolio-api/internal/services"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAdminContext attaches an authenticated admin identity to the request,
// standing in for the request gate.
func WithAdminContext(req *http.Request, admin *models.Admin) *http.Request {
	ctx := context.WithValue(req.Context(), auth.AdminContextKey, admin)
	return req.WithContext(ctx)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertSuccessResponse checks status and decodes the success envelope.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) pkghttp.Response {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode response JSON")
	assert.True(t, resp.Success)
	return resp
}

// AssertErrorResponse checks status and the machine-readable error code.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) pkghttp.ErrorResponse {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedCode, resp.Code, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// findCookie returns the named Set-Cookie from a recorded response, or nil.
func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	AuthenticateFunc func(ctx context.Context, email, password, ipAddress string) (services.LoginResult, error)
	IssueSessionFunc func(ctx context.Context, admin *models.Admin) (*services.Session, error)
	RefreshFunc      func(ctx context.Context, refreshToken string) (*services.Session, *models.Admin, error)
	LogoutFunc       func(ctx context.Context, admin *models.Admin, refreshToken string) error
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password, ipAddress string) (services.LoginResult, error) {
	if m.AuthenticateFunc == nil {
		return services.LoginResult{Reason: models.ReasonNotFound}, nil
	}
	return m.AuthenticateFunc(ctx, email, password, ipAddress)
}

func (m *MockAuthService) IssueSession(ctx context.Context, admin *models.Admin) (*services.Session, error) {
	if m.IssueSessionFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.IssueSessionFunc(ctx, admin)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*services.Session, *models.Admin, error) {
	if m.RefreshFunc == nil {
		return nil, nil, models.ErrInvalidRefreshToken
	}
	return m.RefreshFunc(ctx, refreshToken)
}

func (m *MockAuthService) Logout(ctx context.Context, admin *models.Admin, refreshToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, admin, refreshToken)
}

// MockSetupService implements SetupServiceInterface for testing
type MockSetupService struct {
	NeedsSetupFunc         func(ctx context.Context) (bool, error)
	CreateInitialAdminFunc func(ctx context.Context) (*models.Admin, error)
}

func (m *MockSetupService) NeedsSetup(ctx context.Context) (bool, error) {
	if m.NeedsSetupFunc == nil {
		return true, nil
	}
	return m.NeedsSetupFunc(ctx)
}

func (m *MockSetupService) CreateInitialAdmin(ctx context.Context) (*models.Admin, error) {
	if m.CreateInitialAdminFunc == nil {
		return nil, models.ErrAdminExists
	}
	return m.CreateInitialAdminFunc(ctx)
}

// MockMessageService implements MessageServiceInterface for testing
type MockMessageService struct {
	SubmitFunc   func(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListFunc     func(ctx context.Context, limit, offset int) ([]*models.Message, error)
	MarkReadFunc func(ctx context.Context, id string) error
	DeleteFunc   func(ctx context.Context, id string) error
}

func (m *MockMessageService) Submit(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if m.SubmitFunc == nil {
		return msg, nil
	}
	return m.SubmitFunc(ctx, msg)
}

func (m *MockMessageService) List(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	if m.ListFunc == nil {
		return []*models.Message{}, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *MockMessageService) MarkRead(ctx context.Context, id string) error {
	if m.MarkReadFunc == nil {
		return nil
	}
	return m.MarkReadFunc(ctx, id)
}

func (m *MockMessageService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	GetFunc    func(ctx context.Context, includePrivate bool) (*models.Profile, error)
	UpdateFunc func(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

func (m *MockProfileService) Get(ctx context.Context, includePrivate bool) (*models.Profile, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, includePrivate)
}

func (m *MockProfileService) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if m.UpdateFunc == nil {
		return profile, nil
	}
	return m.UpdateFunc(ctx, profile)
}
