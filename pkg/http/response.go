package http

import (
	"encoding/json"
	"net/http"
)

// Response is the standard success envelope: {"success":true,"message":...,"data":...}
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope. Code is machine-readable;
// Message is the client-facing text and never carries internal detail.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// WriteSuccess writes a JSON success envelope with the given status code.
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteError writes a JSON error envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// WriteRateLimited writes a 429 with the retry window in seconds.
func WriteRateLimited(w http.ResponseWriter, code, message string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success:    false,
		Message:    message,
		Code:       code,
		RetryAfter: retryAfter,
	})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

func WriteUnauthorized(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

func WriteForbidden(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusForbidden, code, message)
}

func WriteNotFound(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusNotFound, code, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
