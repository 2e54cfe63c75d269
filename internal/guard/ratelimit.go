package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

// LimitProfile is one fixed-window ceiling. The orchestrator picks the
// profile from caller identity: authenticated chat gets a higher ceiling,
// public chat a low one.
type LimitProfile struct {
	Limit  int
	Window time.Duration
}

type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type RateLimiter struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewRateLimiter(store Store, baseLog *logger.Logger) *RateLimiter {
	return &RateLimiter{
		store: store,
		log:   baseLog.With("service", "RateLimiter"),
		now:   time.Now,
	}
}

// Check counts this call against key's current window and reports whether it
// is allowed. Windows are fixed, aligned to the epoch, so every instance
// computes the same reset boundary for a key. Store failures fail open: a
// broken limiter must degrade to "no limiting", never to "no service".
func (l *RateLimiter) Check(ctx context.Context, key string, profile LimitProfile) Decision {
	now := l.now()
	windowStart := now.Truncate(profile.Window)
	resetAt := windowStart.Add(profile.Window)
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	count, err := l.store.IncrWindow(ctx, windowKey, resetAt.Sub(now))
	if err != nil {
		l.log.Warn("Rate limit store unavailable, allowing request", "key", key, "error", err)
		return Decision{Allowed: true, Remaining: profile.Limit, ResetAt: resetAt}
	}

	remaining := profile.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if int(count) > profile.Limit {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}
	return Decision{Allowed: true, Remaining: remaining, ResetAt: resetAt}
}
