package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/wonny/tradejournal/backend/pkg/logger"
	"github.com/wonny/tradejournal/backend/pkg/redis"
)

// Limiter decides whether a client may issue another request
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}

// NewLimiter picks the Redis sliding window when Redis is enabled and an
// in-process token bucket otherwise
func NewLimiter(rl *redis.RateLimiter, requests int, window time.Duration) Limiter {
	if rl != nil && rl.Enabled() {
		return &redisLimiter{limiter: rl, requests: requests, window: window}
	}
	return newLocalLimiter(requests, window)
}

// redisLimiter shares limits across API instances
type redisLimiter struct {
	limiter  *redis.RateLimiter
	requests int
	window   time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, redis.RateLimitConfig{
		Key:    client,
		Limit:  l.requests,
		Window: l.window,
	})
	return allowed, err
}

// localLimiter keeps one token bucket per client in memory
type localLimiter struct {
	mu        sync.Mutex
	clients   map[string]*localClient
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(requests int, window time.Duration) *localLimiter {
	return &localLimiter{
		clients: make(map[string]*localClient),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		idleTTL: 3 * window,
	}
}

func (l *localLimiter) Allow(_ context.Context, client string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	c, ok := l.clients[client]
	if !ok {
		c = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1), nil
}

// sweep drops idle clients, at most once per idle period
func (l *localLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// rateLimitMiddleware rejects clients over their limit with 429.
// Limiter failures let the request through.
func rateLimitMiddleware(limiter Limiter, trusted []netip.Prefix, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r, trusted)

			allowed, err := limiter.Allow(r.Context(), client)
			if err != nil {
				log.WithError(err).WithField("client", client).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(1))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by its remote IP. When the peer is a
// trusted proxy, the rightmost X-Forwarded-For hop that is not itself a
// trusted proxy is used instead.
func clientKey(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !isTrustedProxy(host, trusted) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !isTrustedProxy(hop, trusted) {
			return hop
		}
	}
	return host
}

func isTrustedProxy(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return lo.ContainsBy(trusted, func(p netip.Prefix) bool {
		return p.Contains(addr)
	})
}
