package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// window counts the requests of one client in a fixed window.
type window struct {
	count int
	reset time.Time
}

// limiter is a fixed-window counter keyed by client IP. Expired windows are
// dropped on a sweep every few windows so idle clients do not accumulate.
type limiter struct {
	mu        sync.Mutex
	limit     int
	per       time.Duration
	windows   map[string]*window
	nextSweep time.Time
	now       func() time.Time
}

func newLimiter(limit int, per time.Duration, now func() time.Time) *limiter {
	return &limiter{limit: limit, per: per, windows: map[string]*window{}, now: now}
}

// allow records one request for key and reports the wait until the window
// resets when the limit is already reached.
func (l *limiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.After(l.nextSweep) {
		for k, w := range l.windows {
			if now.After(w.reset) {
				delete(l.windows, k)
			}
		}
		l.nextSweep = now.Add(4 * l.per)
	}
	w, ok := l.windows[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(l.per)}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return false, w.reset.Sub(now)
	}
	w.count++
	return true, 0
}

// RateLimit allows limit requests per client IP in each window of length
// per. A non-positive limit disables the check.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, per, time.Now)
}

func rateLimit(limit int, per time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newLimiter(limit, per, now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(ClientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
