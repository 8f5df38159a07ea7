package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jdangi/portfolio-api/internal/database"
	"github.com/jdangi/portfolio-api/internal/models"
)

type AdminRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db, pool: db.Pool}
}

// rowScanner supports both single-row and multi-row scans
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAdminRow handles nullable fields and populates an Admin from a database row
func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin
	var lastLogin, lockUntil *time.Time

	err := scanner.Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash,
		&admin.Role, &admin.IsActive, &lastLogin,
		&admin.LoginAttempts, &lockUntil,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	admin.LastLogin = lastLogin
	admin.LockUntil = lockUntil

	return &admin, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, name, email, password_hash, role, is_active, last_login, login_attempts, lock_until, created_at, updated_at
		FROM admins WHERE email = $1
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		SELECT id, name, email, password_hash, role, is_active, last_login, login_attempts, lock_until, created_at, updated_at
		FROM admins WHERE id = $1
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

// GetProjectionByID loads the admin identity without the password hash or
// session set. This is the projection the request gate hands to downstream
// handlers.
func (r *AdminRepository) GetProjectionByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		SELECT id, name, email, role, is_active, last_login, login_attempts, lock_until, created_at, updated_at
		FROM admins WHERE id = $1
	`

	var admin models.Admin
	var lastLogin, lockUntil *time.Time

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&admin.ID, &admin.Name, &admin.Email,
		&admin.Role, &admin.IsActive, &lastLogin,
		&admin.LoginAttempts, &lockUntil,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	admin.LastLogin = lastLogin
	admin.LockUntil = lockUntil

	return &admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.Role == "" {
		admin.Role = models.RoleAdmin
	}

	query := `
		INSERT INTO admins (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, email, password_hash, role, is_active, last_login, login_attempts, lock_until, created_at, updated_at
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Name, admin.Email, admin.PasswordHash,
		admin.Role, admin.IsActive, admin.CreatedAt, admin.UpdatedAt,
	))
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// RecordFailedLogin applies the failed-attempt transition as one atomic
// increment-and-compare so concurrent wrong-password attempts cannot
// under-count lockouts. The SQL mirrors models.FailedLoginTransition: an
// already-expired lock restarts the counter at 1, otherwise the counter
// increments and the account locks when it reaches the threshold.
func (r *AdminRepository) RecordFailedLogin(ctx context.Context, id string) (*models.Admin, error) {
	query := `
		UPDATE admins SET
			login_attempts = CASE
				WHEN lock_until IS NOT NULL AND lock_until < now() THEN 1
				ELSE login_attempts + 1
			END,
			lock_until = CASE
				WHEN lock_until IS NOT NULL AND lock_until < now() THEN NULL
				WHEN login_attempts + 1 >= $2 AND (lock_until IS NULL OR lock_until < now()) THEN now() + make_interval(secs => $3)
				ELSE lock_until
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, password_hash, role, is_active, last_login, login_attempts, lock_until, created_at, updated_at
	`

	return scanAdminRow(r.pool.QueryRow(ctx, query, id,
		models.MaxLoginAttempts, models.LockDuration.Seconds()))
}

// RecordSuccessfulLogin resets the counter, clears any lock, and stamps the
// login time.
func (r *AdminRepository) RecordSuccessfulLogin(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE admins SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddRefreshToken appends a token to the account's session set.
func (r *AdminRepository) AddRefreshToken(ctx context.Context, adminID, token string) error {
	query := `
		INSERT INTO admin_refresh_tokens (id, admin_id, token, created_at)
		VALUES ($1, $2, $3, now())
	`

	if _, err := r.pool.Exec(ctx, query, uuid.New().String(), adminID, token); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// RemoveRefreshToken revokes a single token. Removing a token that is not in
// the session set is not an error (logout is idempotent).
func (r *AdminRepository) RemoveRefreshToken(ctx context.Context, adminID, token string) error {
	query := `DELETE FROM admin_refresh_tokens WHERE admin_id = $1 AND token = $2`

	if _, err := r.pool.Exec(ctx, query, adminID, token); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// RotateRefreshToken swaps oldToken for newToken in one transaction. The
// delete matches the exact token value and only within its TTL, so a revoked
// or expired token fails the swap even though its signature still verifies.
// From the caller's view the swap is atomic: there is no state where both or
// neither token is live.
func (r *AdminRepository) RotateRefreshToken(ctx context.Context, adminID, oldToken, newToken string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM admin_refresh_tokens
			 WHERE admin_id = $1 AND token = $2 AND created_at > now() - make_interval(secs => $3)`,
			adminID, oldToken, models.RefreshTokenTTL.Seconds())
		if err != nil {
			return database.MapPostgresError(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrInvalidRefreshToken
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO admin_refresh_tokens (id, admin_id, token, created_at) VALUES ($1, $2, $3, now())`,
			uuid.New().String(), adminID, newToken)
		return database.MapPostgresError(err)
	})
}

// HasRefreshToken reports whether the exact token value is live in the
// account's session set (present and within TTL).
func (r *AdminRepository) HasRefreshToken(ctx context.Context, adminID, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM admin_refresh_tokens
			WHERE admin_id = $1 AND token = $2 AND created_at > now() - make_interval(secs => $3)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, adminID, token, models.RefreshTokenTTL.Seconds()).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// DeleteExpiredRefreshTokens purges session-set entries past their TTL.
// Expired entries are already treated as absent by every query; this keeps
// the table from growing without bound.
func (r *AdminRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM admin_refresh_tokens WHERE created_at <= now() - make_interval(secs => $1)`,
		models.RefreshTokenTTL.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
