package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent is one security-relevant event. The internal failure reason is
// recorded here even when the client only sees a generic message.
type AuditEvent struct {
	EventType string
	AdminID   string
	IPAddress string
	Success   bool
	Reason    string
	Metadata  map[string]string
}

// AuditLogger provides structured audit logging for authentication events
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogAuthAttempt logs a login, refresh, or logout event
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AdminID != "" {
		attrs = append(attrs, slog.String("admin_id", event.AdminID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.Reason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogAccountAction logs general account lifecycle events (setup, lock, unlock)
func (al *AuditLogger) LogAccountAction(eventType, adminID string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("admin_id", adminID),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	for key, val := range metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
