package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jdangi/portfolio-api/internal/models"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
)

// MessageServiceInterface defines the interface for contact-form messages
type MessageServiceInterface interface {
	Submit(ctx context.Context, msg *models.Message) (*models.Message, error)
	List(ctx context.Context, limit, offset int) ([]*models.Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// MessageHandler handles contact-form endpoints.
type MessageHandler struct {
	service MessageServiceInterface
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service MessageServiceInterface) *MessageHandler {
	return &MessageHandler{service: service}
}

// CreateMessageRequest represents the public contact-form submission
type CreateMessageRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// MessageResponse represents a message in HTTP responses
type MessageResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

// Create handles POST /api/messages (public)
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, models.CodeValidationFailed, "Invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, models.CodeValidationFailed, err.Error())
		return
	}

	msg, err := h.service.Submit(r.Context(), &models.Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Message sent", map[string]interface{}{
		"id": msg.ID,
	})
}

// List handles GET /api/messages (admin)
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]*MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, messageModelToResponse(msg))
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Messages retrieved", map[string]interface{}{
		"messages": resp,
		"count":    len(resp),
	})
}

// MarkRead handles PATCH /api/messages/{id}/read (admin)
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, models.CodeNotFound, "Message not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Message marked as read", nil)
}

// Delete handles DELETE /api/messages/{id} (super_admin)
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, models.CodeNotFound, "Message not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Message deleted", nil)
}

func messageModelToResponse(msg *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Body,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}
