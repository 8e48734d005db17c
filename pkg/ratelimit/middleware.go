package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	apperrors "github.com/tendant/simple-onboarding/pkg/errors"
	"github.com/tendant/simple-onboarding/pkg/session"
)

// Config holds rate limiting configuration
type Config struct {
	// Global rate limiting
	GlobalEnabled    bool
	GlobalCapacity   int     // Max burst
	GlobalRefillRate float64 // Requests per second

	// Per-IP rate limiting
	PerIPEnabled    bool
	PerIPCapacity   int
	PerIPRefillRate float64

	// Per-session rate limiting, keyed by the signup session cookie
	PerSessionEnabled    bool
	PerSessionCapacity   int
	PerSessionRefillRate float64

	// Endpoint-specific limits keyed by "METHOD /path", applied per client IP
	EndpointLimits map[string]EndpointLimit

	// How long to keep inactive buckets in memory
	BucketTTL time.Duration

	// Headers to include in response
	IncludeHeaders bool
}

// EndpointLimit defines rate limits for a specific endpoint
type EndpointLimit struct {
	Capacity   int
	RefillRate float64
}

// DefaultConfig limits the two write endpoints that create state: step 1
// and the final submission.
func DefaultConfig() *Config {
	return &Config{
		// Global: 1000 requests per minute
		GlobalEnabled:    true,
		GlobalCapacity:   1000,
		GlobalRefillRate: 1000.0 / 60.0,

		// Per-IP: 100 requests per minute
		PerIPEnabled:    true,
		PerIPCapacity:   100,
		PerIPRefillRate: 100.0 / 60.0,

		// Per-session: 60 requests per minute, a person clicking through the form
		PerSessionEnabled:    true,
		PerSessionCapacity:   60,
		PerSessionRefillRate: 1.0,

		BucketTTL:      1 * time.Hour,
		IncludeHeaders: true,

		EndpointLimits: map[string]EndpointLimit{
			"POST /signup": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /signup-details/submit": {
				Capacity:   5,
				RefillRate: 5.0 / 300.0,
			},
		},
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	config           *Config
	globalLimiter    *RateLimiter
	ipLimiter        *RateLimiter
	sessionLimiter   *RateLimiter
	endpointLimiters map[string]*RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config, opts ...LimiterOption) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Middleware{
		config:           config,
		endpointLimiters: make(map[string]*RateLimiter),
	}

	if config.GlobalEnabled {
		m.globalLimiter = NewRateLimiter(config.GlobalCapacity, config.GlobalRefillRate, config.BucketTTL, opts...)
	}
	if config.PerIPEnabled {
		m.ipLimiter = NewRateLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL, opts...)
	}
	if config.PerSessionEnabled {
		m.sessionLimiter = NewRateLimiter(config.PerSessionCapacity, config.PerSessionRefillRate, config.BucketTTL, opts...)
	}
	for endpoint, limit := range config.EndpointLimits {
		m.endpointLimiters[endpoint] = NewRateLimiter(limit.Capacity, limit.RefillRate, config.BucketTTL, opts...)
	}

	return m
}

// Handler returns the rate limiting middleware handler. The session limit
// only applies when it runs after session.Manager.Middleware.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.globalLimiter != nil {
			if ok, wait := m.globalLimiter.Take("global"); !ok {
				m.rateLimitExceeded(w, r, "global", wait)
				return
			}
		}

		ip := getClientIP(r)
		if m.ipLimiter != nil && ip != "" {
			if ok, wait := m.ipLimiter.Take(ip); !ok {
				m.rateLimitExceeded(w, r, "ip", wait)
				return
			}
		}

		sid, _ := session.SessionID(r.Context())
		if m.sessionLimiter != nil && sid != "" {
			if ok, wait := m.sessionLimiter.Take(sid); !ok {
				m.rateLimitExceeded(w, r, "session", wait)
				return
			}
		}

		endpointKey := endpointKey(r)
		if limiter, exists := m.endpointLimiters[endpointKey]; exists {
			if ok, wait := limiter.Take(ip + ":" + endpointKey); !ok {
				m.rateLimitExceeded(w, r, "endpoint", wait)
				return
			}
		}

		if m.config.IncludeHeaders {
			m.addRateLimitHeaders(w, ip, sid)
		}

		next.ServeHTTP(w, r)
	})
}

func endpointKey(r *http.Request) string {
	path := r.URL.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return r.Method + " " + path
}

// rateLimitExceeded writes a 429 with the structured error body
func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType string, wait time.Duration) {
	sid, _ := session.SessionID(r.Context())
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"ip", getClientIP(r),
		"session", sid,
		"path", r.URL.Path,
		"method", r.Method,
	)

	retryAfter := retryAfterSeconds(wait)
	w.Header().Set("Retry-After", retryAfter)

	appErr := apperrors.RateLimitExceeded(retryAfter).WithDetail("type", limitType)
	render.Status(r, appErr.HTTPStatusCode())
	render.JSON(w, r, map[string]interface{}{
		"error":   "Too many requests. Please try again later.",
		"code":    appErr.Code,
		"details": appErr.Details,
	})
}

func retryAfterSeconds(wait time.Duration) string {
	secs := int64(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	if secs > 3600 {
		secs = 3600
	}
	return strconv.FormatInt(secs, 10)
}

// addRateLimitHeaders adds rate limit information headers
func (m *Middleware) addRateLimitHeaders(w http.ResponseWriter, ip, sid string) {
	if m.ipLimiter != nil && ip != "" {
		w.Header().Set("X-RateLimit-Limit-IP", fmt.Sprintf("%d", m.config.PerIPCapacity))
	}
	if m.sessionLimiter != nil && sid != "" {
		w.Header().Set("X-RateLimit-Limit-Session", fmt.Sprintf("%d", m.config.PerSessionCapacity))
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is in format "IP:port", we only want the IP
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// GetStats returns statistics about all rate limiters
func (m *Middleware) GetStats() map[string]Stats {
	stats := make(map[string]Stats)

	if m.globalLimiter != nil {
		stats["global"] = m.globalLimiter.GetStats()
	}
	if m.ipLimiter != nil {
		stats["ip"] = m.ipLimiter.GetStats()
	}
	if m.sessionLimiter != nil {
		stats["session"] = m.sessionLimiter.GetStats()
	}
	for endpoint, limiter := range m.endpointLimiters {
		stats["endpoint:"+endpoint] = limiter.GetStats()
	}

	return stats
}

// Reset refills the limits for a specific IP or session id
func (m *Middleware) Reset(key string) {
	if m.ipLimiter != nil {
		m.ipLimiter.Reset(key)
	}
	if m.sessionLimiter != nil {
		m.sessionLimiter.Reset(key)
	}
}

// Stop ends every limiter's cleanup goroutine
func (m *Middleware) Stop() {
	for _, rl := range []*RateLimiter{m.globalLimiter, m.ipLimiter, m.sessionLimiter} {
		if rl != nil {
			rl.Stop()
		}
	}
	for _, rl := range m.endpointLimiters {
		rl.Stop()
	}
}
