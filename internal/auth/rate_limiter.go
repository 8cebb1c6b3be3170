package auth

import (
	"context"
	"time"
)

const (
	loginLimitWindow = time.Minute
	loginLimitMax    = 10
	loginLimitPrefix = "login_attempts:"
)

// attemptCounter is the windowed counter the limiter runs on; the second
// return value reports whether the backend was reachable.
type attemptCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, bool)
}

// LoginLimiter throttles authentication attempts per client address using a
// counter with a rolling one-minute window. When the backing counter is
// unreachable every attempt is allowed; throttling degrades, it never blocks.
type LoginLimiter struct {
	counter attemptCounter
}

// NewLoginLimiter creates a limiter over the given counter, typically the
// shared cache client.
func NewLoginLimiter(counter attemptCounter) *LoginLimiter {
	return &LoginLimiter{counter: counter}
}

// Allow reports whether another attempt from key is within the limit.
func (l *LoginLimiter) Allow(ctx context.Context, key string) bool {
	count, ok := l.counter.Incr(ctx, loginLimitPrefix+key, loginLimitWindow)
	if !ok {
		return true
	}
	return count <= loginLimitMax
}
