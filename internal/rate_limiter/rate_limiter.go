package ratelimiter

import (
	"sync"
	"time"

	"github.com/notifero/mail-service/internal/config"
	"go.uber.org/zap"
)

type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	cfg     config.RateLimiterConfig
	logger  *zap.SugaredLogger
}

type window struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		cfg:     cfg,
		logger:  logger,
	}
}

func (l *FixedWindowRateLimiter) Enabled() bool {
	return l.cfg.Enabled
}

// Allow counts one request for the client and reports whether it fits in
// the current window; when it does not, the time until the window resets
// is returned.
func (l *FixedWindowRateLimiter) Allow(clientID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	w, ok := l.clients[clientID]
	if !ok || now.After(w.resetAt) {
		l.clients[clientID] = &window{count: 1, resetAt: now.Add(l.cfg.TimeFrame)}
		return true, 0
	}

	if w.count >= l.cfg.RequestsPerTimeFrame {
		l.logger.Debugf("Rate limit exceeded for client %s", clientID)
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}
