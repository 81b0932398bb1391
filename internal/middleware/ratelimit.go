package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/MassBabyGeek/TradeMind-backend/internal/utils"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per authenticated user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewUserRateLimiter(perSecond float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *UserRateLimiter) limiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	return lim
}

// Reset drops every bucket; called periodically so idle users do not accumulate.
func (l *UserRateLimiter) Reset() {
	l.mu.Lock()
	l.limiters = make(map[string]*rate.Limiter)
	l.mu.Unlock()
}

// StartJanitor resets the buckets every interval until stop is closed.
func (l *UserRateLimiter) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Reset()
		}
	}
}

// Middleware must run after the Authenticator middleware.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !l.limiter(userID).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.Error(w, http.StatusTooManyRequests, "too many trade submissions, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
