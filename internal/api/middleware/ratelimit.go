package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const minIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per authenticated user. Buckets idle for longer than
// idleTTL are dropped; by then they have refilled, so a new bucket behaves the same.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*userLimiter
	limit     rate.Limit
	burst     int
	disabled  bool
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewUserRateLimiter allows perMinute requests per user with the given burst. perMinute <= 0 disables limiting.
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &UserRateLimiter{
		limiters: make(map[string]*userLimiter),
		burst:    burst,
		disabled: perMinute <= 0,
		idleTTL:  minIdleTTL,
		now:      time.Now,
	}
	if !l.disabled {
		interval := time.Minute / time.Duration(perMinute)
		l.limit = rate.Every(interval)
		if refill := interval * time.Duration(burst); refill > l.idleTTL {
			l.idleTTL = refill
		}
	}
	return l
}

func (l *UserRateLimiter) Allow(key string) bool {
	if l.disabled {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// sweep must be called with mu held.
func (l *UserRateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Middleware must run after Auth. Requests without a user are keyed by remote address.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if user, ok := GetUser(r.Context()); ok {
			key = "user:" + strconv.FormatUint(uint64(user.ID), 10)
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", "60")
			writeDetail(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
