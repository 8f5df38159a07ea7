package background

import (
	"context"
	"log/slog"
	"time"
)

// SessionStore is the store surface the cleanup loop needs.
type SessionStore interface {
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// CleanupManager periodically purges refresh-token rows past their TTL.
// Expired rows are already invisible to every query; this only keeps the
// table small.
type CleanupManager struct {
	store    SessionStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(store SessionStore, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task. It blocks until Stop is called or
// the context is cancelled; run it in a goroutine.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.store.DeleteExpiredRefreshTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to purge expired refresh tokens", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired refresh tokens purged", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
