// ratelimit.go

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dukalabs/duka-server/internal/core"
)

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

// LoginRateLimiter is an in-process token-bucket limiter keyed by
// client IP, applied to the credential endpoints so password guessing
// is throttled before any account lookup happens.
type LoginRateLimiter struct {
	perMinute int
	burst     int
	limiters  sync.Map
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess int64
}

func NewLoginRateLimiter(perMinute, burst int) *LoginRateLimiter {
	if perMinute < 1 {
		perMinute = 10
	}
	if burst < 1 {
		burst = perMinute
	}

	l := &LoginRateLimiter{perMinute: perMinute, burst: burst}
	go l.cleanup()
	return l
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(60/l.perMinute+1))
			core.JSONError(w, core.NewAppError(
				nil,
				"too many login attempts, slow down",
				http.StatusTooManyRequests,
				"RATE_LIMITED",
			))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *LoginRateLimiter) allow(key string) bool {
	now := time.Now().Unix()

	entryI, loaded := l.limiters.Load(key)
	if !loaded {
		newEntry := &limiterEntry{
			limiter: rate.NewLimiter(
				rate.Limit(float64(l.perMinute)/60.0),
				l.burst,
			),
			lastAccess: now,
		}
		entryI, _ = l.limiters.LoadOrStore(key, newEntry)
	}

	entry, ok := entryI.(*limiterEntry)
	if !ok {
		return true
	}
	entry.lastAccess = now

	return entry.limiter.Allow()
}

func (l *LoginRateLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL).Unix()
		l.limiters.Range(func(key, value any) bool {
			entry, ok := value.(*limiterEntry)
			if ok && entry.lastAccess < cutoff {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

// ClientIP resolves the originating address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
