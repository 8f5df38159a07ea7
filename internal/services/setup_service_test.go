package services

import (
	"context"
	"testing"

	"github.com/jdangi/portfolio-api/internal/models"
	pkgauth "github.com/jdangi/portfolio-api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSetupService(store *memAdminStore) *SetupService {
	return NewSetupService(store, newTestLogger(), newTestAuditLogger())
}

func TestNeedsSetup(t *testing.T) {
	store := newMemAdminStore()
	svc := newTestSetupService(store)
	ctx := context.Background()

	needed, err := svc.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.True(t, needed)

	seedAdmin(t, store, "admin@example.com", "secret123")

	needed, err = svc.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestCreateInitialAdmin(t *testing.T) {
	store := newMemAdminStore()
	svc := newTestSetupService(store)
	ctx := context.Background()

	admin, err := svc.CreateInitialAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAdminEmail, admin.Email)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.True(t, admin.IsActive)

	// The stored hash must verify against the documented default password.
	stored, err := store.GetByEmail(ctx, DefaultAdminEmail)
	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(stored.PasswordHash, DefaultAdminPassword))
}

func TestCreateInitialAdminRejectsSecondCall(t *testing.T) {
	store := newMemAdminStore()
	svc := newTestSetupService(store)
	ctx := context.Background()

	_, err := svc.CreateInitialAdmin(ctx)
	require.NoError(t, err)

	_, err = svc.CreateInitialAdmin(ctx)
	assert.ErrorIs(t, err, models.ErrAdminExists)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateInitialAdminRejectsAnyExistingAccount(t *testing.T) {
	store := newMemAdminStore()
	seedAdmin(t, store, "someone@example.com", "secret123")

	svc := newTestSetupService(store)

	_, err := svc.CreateInitialAdmin(context.Background())
	assert.ErrorIs(t, err, models.ErrAdminExists)
}
