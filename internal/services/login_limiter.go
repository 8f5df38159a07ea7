package services

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is a rate-limit verdict. RetryAfter is the number of whole seconds
// until the window resets, only meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// LoginLimiter guards the login endpoint with a fixed window per client key.
// It is advisory, not a correctness boundary: the account lockout in the
// authenticator is the real brake, and implementations may lose state on
// restart. Implementations fail open on backend errors.
type LoginLimiter interface {
	Check(ctx context.Context, key string) (Decision, error)
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// MemoryLoginLimiter is the process-local limiter: a fixed window of max
// attempts per key, counted in memory. A background sweep drops expired
// windows so the map does not grow with every IP ever seen.
type MemoryLoginLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*memoryWindow

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryLoginLimiter creates a started limiter. Call Stop to end the
// sweep goroutine.
func NewMemoryLoginLimiter(max int, window time.Duration) *MemoryLoginLimiter {
	l := &MemoryLoginLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*memoryWindow),
		stopCh:  make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *MemoryLoginLimiter) Check(_ context.Context, key string) (Decision, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || !entry.resetAt.After(now) {
		l.entries[key] = &memoryWindow{count: 1, resetAt: now.Add(l.window)}
		return Decision{Allowed: true}, nil
	}

	entry.count++
	if entry.count > l.max {
		return Decision{RetryAfter: retryAfterSeconds(entry.resetAt.Sub(now))}, nil
	}
	return Decision{Allowed: true}, nil
}

// Stop ends the sweep goroutine. Idempotent.
func (l *MemoryLoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *MemoryLoginLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.mu.Lock()
			for key, entry := range l.entries {
				if !entry.resetAt.After(now) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}

// RedisLoginLimiter counts attempts in Redis so the window survives restarts
// and is shared across replicas. One INCR per attempt; the key expires with
// the window.
type RedisLoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	logger *slog.Logger
}

// NewRedisLoginLimiter creates a new RedisLoginLimiter
func NewRedisLoginLimiter(client *redis.Client, max int, window time.Duration, logger *slog.Logger) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		client: client,
		max:    max,
		window: window,
		logger: logger,
	}
}

func (l *RedisLoginLimiter) Check(ctx context.Context, key string) (Decision, error) {
	redisKey := "login_limit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open: an unreachable Redis must not block logins.
		l.logger.Error("login limiter incr failed", slog.Any("error", err))
		return Decision{Allowed: true}, nil
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Error("login limiter expire failed", slog.Any("error", err))
		}
	}

	if count > int64(l.max) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl <= 0 {
			ttl = l.window
		}
		return Decision{RetryAfter: retryAfterSeconds(ttl)}, nil
	}

	return Decision{Allowed: true}, nil
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
