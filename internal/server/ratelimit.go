package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"growthos/internal/config"
	"growthos/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const defaultEvictionAge = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key. Buckets idle for longer
// than the eviction age are dropped by a background sweep.
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*clientBucket
	rate        rate.Limit
	burst       int
	evictionAge time.Duration
	done        chan struct{}
	closed      bool
	logger      *errors.Logger
}

// NewRateLimiter allows cfg.RequestsPerMin per client with cfg.BurstCapacity as the
// bucket size. cfg.Window is the idle time after which a client's bucket is evicted.
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *RateLimiter {
	burst := cfg.BurstCapacity
	if burst <= 0 {
		burst = 1
	}
	evictionAge := cfg.Window
	if evictionAge <= 0 {
		evictionAge = defaultEvictionAge
	}

	rl := &RateLimiter{
		buckets:     make(map[string]*clientBucket),
		rate:        rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:       burst,
		evictionAge: evictionAge,
		done:        make(chan struct{}),
		logger:      logger,
	}

	go rl.sweepLoop()
	return rl
}

// Allow takes a token from the bucket of key, creating the bucket on first use
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()

	return b.limiter.Allow()
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.buckets),
		"rate_per_minute": float64(rl.rate) * 60.0,
		"burst_capacity":  rl.burst,
		"eviction_age":    rl.evictionAge.String(),
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.evictionAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops buckets not used within the eviction age before now
func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.evictionAge {
			delete(rl.buckets, key)
		}
	}

	if rl.logger != nil {
		rl.logger.Debug("Rate limiter sweep completed", "remaining_limiters", len(rl.buckets))
	}
}

// Close stops the sweep goroutine. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if !rl.closed {
		rl.closed = true
		close(rl.done)
	}
}

// rateLimitMiddleware rejects clients that exhausted their bucket with 429
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rateLimitKey := getRateLimitKey(r, s.RateLimit)
			if rateLimitKey == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(rateLimitKey) {
				s.Logger.Info("Rate limit exceeded",
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r, s.RateLimit.TrustProxy))
				s.Observability.Metrics().RecordRateLimitHit(r.Context(),
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

func getRateLimitKey(r *http.Request, cfg config.RateLimitConfig) string {
	if cfg.ByIP {
		return "ip:" + getClientIP(r, cfg.TrustProxy)
	}
	return "global"
}

// getClientIP extracts the client IP address from the request. Proxy headers
// are only read when the server sits behind a trusted proxy.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := parseFirstIP(xff); ip != "" {
				return ip
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(xri); ip != nil {
				return xri
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
