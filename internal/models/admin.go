package models

import (
	"time"
)

// Lockout policy constants. Lock state is evaluated lazily: nothing unlocks
// accounts on a schedule, every authentication attempt and gate check
// re-evaluates LockUntil against the clock.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
	RefreshTokenTTL  = 7 * 24 * time.Hour
)

// AdminRole values. No other roles exist.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type Admin struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string // excluded from gate projections
	Role          string // "admin" or "super_admin"
	IsActive      bool
	LastLogin     *time.Time
	LoginAttempts int
	LockUntil     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked as of now. A LockUntil in the
// past counts as unlocked (lazy expiry).
func (a *Admin) Locked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// RefreshToken is one live entry in an account's session set. Entries past
// RefreshTokenTTL are treated as absent even before they are purged.
type RefreshToken struct {
	ID        string
	AdminID   string
	Token     string
	CreatedAt time.Time
}

// Expired reports whether the token's fixed TTL has elapsed.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= RefreshTokenTTL
}

// FailureReason is the closed set of internal authentication failure causes.
// It is never echoed to clients directly; the HTTP layer collapses reasons
// into coarse messages to avoid account enumeration.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNotFound
	ReasonPasswordIncorrect
	ReasonMaxAttempts
	ReasonAccountLocked
	ReasonAccountInactive
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotFound:
		return "not_found"
	case ReasonPasswordIncorrect:
		return "password_incorrect"
	case ReasonMaxAttempts:
		return "max_attempts"
	case ReasonAccountLocked:
		return "account_locked"
	case ReasonAccountInactive:
		return "account_inactive"
	default:
		return "unknown"
	}
}

// LoginTransition is the lockout-state change produced by one authentication
// attempt. Transitions are computed as pure functions over an account
// snapshot; the repository applies them (failed transitions with an atomic
// increment-and-compare so concurrent attempts cannot under-count).
type LoginTransition struct {
	Attempts  int
	LockUntil *time.Time
	LastLogin *time.Time
}

// FailedLoginTransition computes the counter state after a wrong password.
// If a previous lock has already expired the counter restarts at 1 instead of
// incrementing the stale value. Reaching MaxLoginAttempts on an unlocked
// account sets LockUntil to now + LockDuration.
func FailedLoginTransition(a *Admin, now time.Time) LoginTransition {
	if a.LockUntil != nil && a.LockUntil.Before(now) {
		return LoginTransition{Attempts: 1}
	}

	t := LoginTransition{
		Attempts:  a.LoginAttempts + 1,
		LockUntil: a.LockUntil,
	}
	if t.Attempts >= MaxLoginAttempts && !a.Locked(now) {
		until := now.Add(LockDuration)
		t.LockUntil = &until
	}
	return t
}

// SuccessfulLoginTransition resets the counter, clears any lock, and stamps
// the login time.
func SuccessfulLoginTransition(now time.Time) LoginTransition {
	return LoginTransition{Attempts: 0, LastLogin: &now}
}
