package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jdangi/portfolio-api/internal/models"
)

// MessageRepository defines the store operations for contact-form messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	List(ctx context.Context, limit, offset int) ([]*models.Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// MessageService handles contact-form submissions and their admin-side
// management.
type MessageService struct {
	repo   MessageRepository
	logger *slog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(repo MessageRepository, logger *slog.Logger) *MessageService {
	return &MessageService{repo: repo, logger: logger}
}

// Submit stores a new contact-form message.
func (s *MessageService) Submit(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.IsRead = false

	created, err := s.repo.Create(ctx, msg)
	if err != nil {
		s.logger.Error("failed to store message", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("contact message received", slog.String("message_id", created.ID))
	return created, nil
}

// List returns messages newest-first.
func (s *MessageService) List(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list messages", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return messages, nil
}

// MarkRead flags a message as read.
func (s *MessageService) MarkRead(ctx context.Context, id string) error {
	err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to mark message read",
			slog.String("message_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// Delete removes a message permanently.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete message",
			slog.String("message_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("message deleted", slog.String("message_id", id))
	return nil
}
