package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/leadscan/pkg/logger"
	"github.com/wonny/leadscan/pkg/redis"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}

// NewLimiter returns a Redis sliding-window limiter when Redis is enabled,
// otherwise an in-process token bucket per client.
// A non-positive perMinute disables limiting.
func NewLimiter(client *redis.Client, perMinute int) Limiter {
	if perMinute <= 0 {
		return nil
	}
	if client != nil && client.Enabled() {
		return &RedisLimiter{
			limiter: redis.NewRateLimiter(client, "leadscan"),
			limit:   redis.APIRateLimit(perMinute),
		}
	}
	return NewLocalLimiter(perMinute)
}

// RedisLimiter shares the budget across server instances
type RedisLimiter struct {
	limiter *redis.RateLimiter
	limit   redis.RateLimitConfig
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, l.limit.ForClient(client))
	return allowed, err
}

// LocalLimiter keeps one token bucket per client in memory
type LocalLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	every    rate.Limit
	burst    int
	lastSeen map[string]time.Time
}

// NewLocalLimiter allows perMinute requests per client with a full-minute burst
func NewLocalLimiter(perMinute int) *LocalLimiter {
	return &LocalLimiter{
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

// Allow implements Limiter
func (l *LocalLimiter) Allow(_ context.Context, client string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	lim, ok := l.clients[client]
	if !ok {
		l.evictIdle(now)
		lim = rate.NewLimiter(l.every, l.burst)
		l.clients[client] = lim
	}
	l.lastSeen[client] = now
	return lim.AllowN(now, 1), nil
}

// evictIdle drops clients whose bucket has fully refilled
func (l *LocalLimiter) evictIdle(now time.Time) {
	for client, seen := range l.lastSeen {
		if now.Sub(seen) > time.Minute {
			delete(l.clients, client)
			delete(l.lastSeen, client)
		}
	}
}

// rateLimitMiddleware rejects clients over budget with 429.
// Limiter errors fail open.
func rateLimitMiddleware(limiter Limiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)
			allowed, err := limiter.Allow(r.Context(), client)
			if err != nil {
				log.WithError(err).WithField("client", client).Warn("Rate limiter unavailable")
			} else if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by the first X-Forwarded-For hop or the remote IP
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
