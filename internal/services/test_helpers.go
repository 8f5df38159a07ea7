package services

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jdangi/portfolio-api/internal/models"
	pkglogger "github.com/jdangi/portfolio-api/pkg/logger"
)

// memAdminStore is the in-memory credential store used by service tests. It
// applies the same pure login transitions the Postgres repository encodes in
// SQL, so the service-level tests exercise the real state machine.
type memAdminStore struct {
	mu     sync.Mutex
	nextID int
	admins map[string]*models.Admin
	tokens map[string]map[string]time.Time // adminID -> token -> created_at
}

func newMemAdminStore() *memAdminStore {
	return &memAdminStore{
		admins: make(map[string]*models.Admin),
		tokens: make(map[string]map[string]time.Time),
	}
}

func (m *memAdminStore) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			copy := *a
			return &copy, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memAdminStore) GetByID(_ context.Context, id string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *memAdminStore) GetProjectionByID(ctx context.Context, id string) (*models.Admin, error) {
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = ""
	return a, nil
}

func (m *memAdminStore) Create(_ context.Context, admin *models.Admin) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.admins {
		if a.Email == admin.Email {
			return nil, models.ErrConflict
		}
	}

	m.nextID++
	stored := *admin
	stored.ID = "admin-" + strconv.Itoa(m.nextID)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Role == "" {
		stored.Role = models.RoleAdmin
	}
	m.admins[stored.ID] = &stored

	copy := stored
	return &copy, nil
}

func (m *memAdminStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

func (m *memAdminStore) RecordFailedLogin(_ context.Context, id string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.admins[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	t := models.FailedLoginTransition(a, time.Now())
	a.LoginAttempts = t.Attempts
	a.LockUntil = t.LockUntil

	copy := *a
	return &copy, nil
}

func (m *memAdminStore) RecordSuccessfulLogin(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.admins[id]
	if !ok {
		return models.ErrNotFound
	}

	t := models.SuccessfulLoginTransition(now)
	a.LoginAttempts = t.Attempts
	a.LockUntil = t.LockUntil
	a.LastLogin = t.LastLogin
	return nil
}

func (m *memAdminStore) AddRefreshToken(_ context.Context, adminID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tokens[adminID] == nil {
		m.tokens[adminID] = make(map[string]time.Time)
	}
	m.tokens[adminID][token] = time.Now()
	return nil
}

func (m *memAdminStore) RemoveRefreshToken(_ context.Context, adminID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens[adminID], token)
	return nil
}

func (m *memAdminStore) RotateRefreshToken(_ context.Context, adminID, oldToken, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt, ok := m.tokens[adminID][oldToken]
	if !ok || time.Since(createdAt) >= models.RefreshTokenTTL {
		return models.ErrInvalidRefreshToken
	}
	delete(m.tokens[adminID], oldToken)
	m.tokens[adminID][newToken] = time.Now()
	return nil
}

func (m *memAdminStore) HasRefreshToken(_ context.Context, adminID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt, ok := m.tokens[adminID][token]
	return ok && time.Since(createdAt) < models.RefreshTokenTTL, nil
}

// setAdmin overwrites stored account state, for arranging lock/attempt
// preconditions in tests.
func (m *memAdminStore) setAdmin(id string, mutate func(*models.Admin)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mutate(m.admins[id])
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}
