package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jdangi/portfolio-api/internal/database"
	"github.com/jdangi/portfolio-api/internal/models"
)

// ProfileRepository persists the single profile row (id is always 1).
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{pool: db.Pool}
}

func (r *ProfileRepository) Get(ctx context.Context) (*models.Profile, error) {
	query := `
		SELECT id, full_name, headline, bio, email, location, socials, updated_at
		FROM profile WHERE id = 1
	`

	var profile models.Profile
	var socials []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&profile.ID, &profile.FullName, &profile.Headline, &profile.Bio,
		&profile.Email, &profile.Location, &socials, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &profile.Socials); err != nil {
			return nil, err
		}
	}

	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.ID = 1
	profile.UpdatedAt = time.Now()

	socials, err := json.Marshal(profile.Socials)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO profile (id, full_name, headline, bio, email, location, socials, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			bio = EXCLUDED.bio,
			email = EXCLUDED.email,
			location = EXCLUDED.location,
			socials = EXCLUDED.socials,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		profile.FullName, profile.Headline, profile.Bio,
		profile.Email, profile.Location, socials, profile.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return profile, nil
}
