package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jdangi/portfolio-api/internal/database"
	"github.com/jdangi/portfolio-api/internal/models"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{pool: db.Pool}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()

	query := `
		INSERT INTO messages (id, name, email, subject, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Body, msg.IsRead, msg.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return msg, nil
}

func (r *MessageRepository) List(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT id, name, email, subject, body, is_read, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject,
			&msg.Body, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, database.MapPostgresError(err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return messages, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `UPDATE messages SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
