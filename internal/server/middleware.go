package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-exosky/internal/config"
	"github.com/litescript/ls-exosky/internal/logging"
)

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	config  config.RateLimitConfig
	logger  *logging.Logger
	clients map[string]*rate.Limiter
	mu      sync.Mutex
}

// NewRateLimiter creates a limiter allowing cfg.RequestsPerSecond per client
// with bursts of cfg.BurstSize.
func NewRateLimiter(cfg config.RateLimitConfig, logger *logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RateLimiter{
		config:  cfg,
		logger:  logger,
		clients: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.clients[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)
		rl.clients[ip] = limiter
	}
	return limiter
}

// Cleanup drops idle clients every interval until ctx is cancelled.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	if !rl.config.Enabled {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.prune(now)
		}
	}
}

// prune removes clients whose bucket has refilled.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, limiter := range rl.clients {
		if limiter.TokensAt(now) >= float64(rl.config.BurstSize) {
			delete(rl.clients, ip)
		}
	}
}

// Middleware rejects requests over the client's limit with 429 Too Many Requests.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			rl.logger.Warn("rate limit exceeded for %s on %s", ip, r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the request's remote host. Forwarding headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CORSMiddleware wraps rs/cors for the read-only API.
type CORSMiddleware struct {
	*cors.Cors
}

// NewCORS allows GET and OPTIONS from the given origins; "*" allows any origin.
func NewCORS(origins []string, logger *logging.Logger) *CORSMiddleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if logger != nil {
		logger.Debug("CORS allowed origins: %s", strings.Join(origins, ", "))
	}
	return &CORSMiddleware{cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Star-Count", "X-Star-Seed"},
	})}
}

// Middleware applies the CORS policy to h.
func (c *CORSMiddleware) Middleware(h http.Handler) http.Handler {
	return c.Cors.Handler(h)
}
