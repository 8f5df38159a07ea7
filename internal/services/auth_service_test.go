package services

import (
	"context"
	"testing"
	"time"

	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/models"
	pkgauth "github.com/jdangi/portfolio-api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(
		"test-access-secret-0123456789",
		"test-access-secret-0123456789-refresh",
		15*time.Minute,
		7*24*time.Hour,
	)
}

// seedAdmin creates an active admin with the given password and returns the
// stored account.
func seedAdmin(t *testing.T, store *memAdminStore, email, password string) *models.Admin {
	t.Helper()

	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)

	admin, err := store.Create(context.Background(), &models.Admin{
		Name:         "Test Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	require.NoError(t, err)
	return admin
}

func newTestAuthService(store *memAdminStore) *AuthService {
	return NewAuthService(store, newTestTokenManager(), newTestLogger(), newTestAuditLogger())
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newMemAdminStore())

	result, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, models.ReasonNotFound, result.Reason)
	assert.Nil(t, result.Admin)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")
	store.setAdmin(admin.ID, func(a *models.Admin) { a.IsActive = false })

	svc := newTestAuthService(store)

	// Inactive wins even over a correct password.
	result, err := svc.Authenticate(context.Background(), "admin@example.com", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonAccountInactive, result.Reason)
}

func TestAuthenticateSuccess(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)

	result, err := svc.Authenticate(context.Background(), "  Admin@Example.COM  ", "secret123", "")
	require.NoError(t, err)
	require.True(t, result.Success())
	assert.Equal(t, admin.ID, result.Admin.ID)
	assert.Equal(t, 0, result.Admin.LoginAttempts)
	assert.Nil(t, result.Admin.LockUntil)
	assert.NotNil(t, result.Admin.LastLogin)
}

func TestAuthenticateLockoutProgression(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	// Four wrong passwords: plain incorrect-password failures.
	for i := 1; i <= models.MaxLoginAttempts-1; i++ {
		result, err := svc.Authenticate(ctx, "admin@example.com", "wrong", "")
		require.NoError(t, err)
		assert.Equal(t, models.ReasonPasswordIncorrect, result.Reason, "attempt %d", i)
	}

	// Fifth wrong password trips the lock.
	result, err := svc.Authenticate(ctx, "admin@example.com", "wrong", "")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonMaxAttempts, result.Reason)

	stored, err := store.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaxLoginAttempts, stored.LoginAttempts)
	require.NotNil(t, stored.LockUntil)
	assert.WithinDuration(t, time.Now().Add(models.LockDuration), *stored.LockUntil, 5*time.Second)

	// Even the correct password is rejected while the lock holds.
	result, err = svc.Authenticate(ctx, "admin@example.com", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonAccountLocked, result.Reason)
}

func TestAuthenticateExpiredLockRestartsCounter(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	expired := time.Now().Add(-time.Minute)
	store.setAdmin(admin.ID, func(a *models.Admin) {
		a.LoginAttempts = models.MaxLoginAttempts
		a.LockUntil = &expired
	})

	svc := newTestAuthService(store)
	ctx := context.Background()

	// The expired lock no longer blocks, and a wrong password restarts the
	// counter at 1 instead of incrementing the stale value.
	result, err := svc.Authenticate(ctx, "admin@example.com", "wrong", "")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonPasswordIncorrect, result.Reason)

	stored, err := store.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LoginAttempts)
	assert.Nil(t, stored.LockUntil)
}

func TestAuthenticateExpiredLockAllowsCorrectPassword(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	expired := time.Now().Add(-time.Minute)
	store.setAdmin(admin.ID, func(a *models.Admin) {
		a.LoginAttempts = models.MaxLoginAttempts
		a.LockUntil = &expired
	})

	svc := newTestAuthService(store)

	result, err := svc.Authenticate(context.Background(), "admin@example.com", "secret123", "")
	require.NoError(t, err)
	require.True(t, result.Success())
	assert.Equal(t, 0, result.Admin.LoginAttempts)
	assert.Nil(t, result.Admin.LockUntil)
}

func TestIssueSessionPersistsRefreshToken(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, 900, session.ExpiresIn)

	live, err := store.HasRefreshToken(ctx, admin.ID, session.RefreshToken)
	require.NoError(t, err)
	assert.True(t, live)
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)

	rotated, refreshedAdmin, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, refreshedAdmin.ID)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Second use of the already-rotated token fails the membership check.
	_, _, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, models.ErrInvalidRefreshToken)

	// The replacement token still works.
	_, _, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRevokedToken(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, admin, session.RefreshToken))

	// Revoked but unexpired: signature verifies, membership does not.
	_, _, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, models.ErrInvalidRefreshToken)
}

func TestRefreshRejectsMissingAndMalformedTokens(t *testing.T) {
	svc := newTestAuthService(newMemAdminStore())
	ctx := context.Background()

	_, _, err := svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, models.ErrNoRefreshToken)

	_, _, err = svc.Refresh(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, models.ErrInvalidRefreshToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)

	// An access token is signed with the wrong key for the refresh flow.
	_, _, err = svc.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, models.ErrInvalidRefreshToken)
}

func TestRefreshInactiveAccount(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)

	store.setAdmin(admin.ID, func(a *models.Admin) { a.IsActive = false })

	_, _, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, models.ErrAccountInactive)
}

func TestLogoutIsIdempotent(t *testing.T) {
	store := newMemAdminStore()
	admin := seedAdmin(t, store, "admin@example.com", "secret123")

	svc := newTestAuthService(store)
	ctx := context.Background()

	// No token at all.
	assert.NoError(t, svc.Logout(ctx, admin, ""))

	// Same token revoked twice.
	session, err := svc.IssueSession(ctx, admin)
	require.NoError(t, err)
	assert.NoError(t, svc.Logout(ctx, admin, session.RefreshToken))
	assert.NoError(t, svc.Logout(ctx, admin, session.RefreshToken))
}
