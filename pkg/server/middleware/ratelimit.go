package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-client request limiter keyed on the
// client's API key when present, falling back to the remote IP. Windows
// are one minute; counts reset at the window boundary.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests per
// client per minute.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		limit:   requestsPerMinute,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records one request for the given client and reports whether it
// fits in the current window.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[client]
	if !ok || now.Sub(w.start) >= time.Minute {
		rl.windows[client] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= rl.limit
}

// Middleware wraps a handler with the limiter. Rejected requests get a 429
// with a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := r.Header.Get(APIKeyHeader)
		if client == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			client = host
		}

		if !rl.Allow(client) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"type":    "rate_limited",
					"message": "request rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
