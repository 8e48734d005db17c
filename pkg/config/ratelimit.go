package config

import (
	"time"

	"github.com/tendant/simple-onboarding/pkg/ratelimit"
)

// RateLimitConfig contains rate limiting settings.
// Fields have no env tags - populate manually or use NewRateLimitConfigFromEnv() for standard env var names.
type RateLimitConfig struct {
	// Global rate limiting
	GlobalEnabled    bool
	GlobalCapacity   int
	GlobalRefillRate float64 // tokens per second

	// Per-IP rate limiting
	PerIPEnabled    bool
	PerIPCapacity   int
	PerIPRefillRate float64 // tokens per second

	// Per-session rate limiting
	PerSessionEnabled    bool
	PerSessionCapacity   int
	PerSessionRefillRate float64 // tokens per second

	// POST /signup, per client IP
	SignupEnabled    bool
	SignupCapacity   int
	SignupRefillRate float64 // tokens per second

	// POST /signup-details/submit, per client IP
	SubmitEnabled    bool
	SubmitCapacity   int
	SubmitRefillRate float64 // tokens per second

	BucketTTL time.Duration

	// IncludeHeaders controls whether rate limit headers are included in responses
	IncludeHeaders bool
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		// Global: ~1000 requests per minute
		GlobalEnabled:    true,
		GlobalCapacity:   1000,
		GlobalRefillRate: 16.67,

		// Per-IP: ~100 requests per minute
		PerIPEnabled:    true,
		PerIPCapacity:   100,
		PerIPRefillRate: 1.67,

		// Per-session: ~60 requests per minute
		PerSessionEnabled:    true,
		PerSessionCapacity:   60,
		PerSessionRefillRate: 1.0,

		// Step 1: 10 per minute
		SignupEnabled:    true,
		SignupCapacity:   10,
		SignupRefillRate: 0.167,

		// Submit: 5 per 5 minutes
		SubmitEnabled:    true,
		SubmitCapacity:   5,
		SubmitRefillRate: 0.017,

		BucketTTL:      time.Hour,
		IncludeHeaders: true,
	}
}

// NewRateLimitConfigFromEnv loads RateLimitConfig from standard environment variables.
//
// Environment variables:
//   - RATELIMIT_GLOBAL_ENABLED, RATELIMIT_GLOBAL_CAPACITY, RATELIMIT_GLOBAL_REFILL_RATE
//   - RATELIMIT_PER_IP_ENABLED, RATELIMIT_PER_IP_CAPACITY, RATELIMIT_PER_IP_REFILL_RATE
//   - RATELIMIT_PER_SESSION_ENABLED, RATELIMIT_PER_SESSION_CAPACITY, RATELIMIT_PER_SESSION_REFILL_RATE
//   - RATELIMIT_SIGNUP_ENABLED, RATELIMIT_SIGNUP_CAPACITY, RATELIMIT_SIGNUP_REFILL_RATE
//   - RATELIMIT_SUBMIT_ENABLED, RATELIMIT_SUBMIT_CAPACITY, RATELIMIT_SUBMIT_REFILL_RATE
//   - RATELIMIT_BUCKET_TTL: how long idle buckets are kept (default: 1h)
//   - RATELIMIT_INCLUDE_HEADERS: Include rate limit headers in responses (default: true)
func NewRateLimitConfigFromEnv() RateLimitConfig {
	d := DefaultRateLimitConfig()
	return RateLimitConfig{
		GlobalEnabled:        GetEnvBool("RATELIMIT_GLOBAL_ENABLED", d.GlobalEnabled),
		GlobalCapacity:       GetEnvInt("RATELIMIT_GLOBAL_CAPACITY", d.GlobalCapacity),
		GlobalRefillRate:     GetEnvFloat64("RATELIMIT_GLOBAL_REFILL_RATE", d.GlobalRefillRate),
		PerIPEnabled:         GetEnvBool("RATELIMIT_PER_IP_ENABLED", d.PerIPEnabled),
		PerIPCapacity:        GetEnvInt("RATELIMIT_PER_IP_CAPACITY", d.PerIPCapacity),
		PerIPRefillRate:      GetEnvFloat64("RATELIMIT_PER_IP_REFILL_RATE", d.PerIPRefillRate),
		PerSessionEnabled:    GetEnvBool("RATELIMIT_PER_SESSION_ENABLED", d.PerSessionEnabled),
		PerSessionCapacity:   GetEnvInt("RATELIMIT_PER_SESSION_CAPACITY", d.PerSessionCapacity),
		PerSessionRefillRate: GetEnvFloat64("RATELIMIT_PER_SESSION_REFILL_RATE", d.PerSessionRefillRate),
		SignupEnabled:        GetEnvBool("RATELIMIT_SIGNUP_ENABLED", d.SignupEnabled),
		SignupCapacity:       GetEnvInt("RATELIMIT_SIGNUP_CAPACITY", d.SignupCapacity),
		SignupRefillRate:     GetEnvFloat64("RATELIMIT_SIGNUP_REFILL_RATE", d.SignupRefillRate),
		SubmitEnabled:        GetEnvBool("RATELIMIT_SUBMIT_ENABLED", d.SubmitEnabled),
		SubmitCapacity:       GetEnvInt("RATELIMIT_SUBMIT_CAPACITY", d.SubmitCapacity),
		SubmitRefillRate:     GetEnvFloat64("RATELIMIT_SUBMIT_REFILL_RATE", d.SubmitRefillRate),
		BucketTTL:            GetEnvDuration("RATELIMIT_BUCKET_TTL", d.BucketTTL),
		IncludeHeaders:       GetEnvBool("RATELIMIT_INCLUDE_HEADERS", d.IncludeHeaders),
	}
}

// ToMiddlewareConfig builds the ratelimit middleware configuration.
// signupPath and submitPath are the routes the endpoint limits apply to.
func (c RateLimitConfig) ToMiddlewareConfig(signupPath, submitPath string) *ratelimit.Config {
	cfg := &ratelimit.Config{
		GlobalEnabled:        c.GlobalEnabled,
		GlobalCapacity:       c.GlobalCapacity,
		GlobalRefillRate:     c.GlobalRefillRate,
		PerIPEnabled:         c.PerIPEnabled,
		PerIPCapacity:        c.PerIPCapacity,
		PerIPRefillRate:      c.PerIPRefillRate,
		PerSessionEnabled:    c.PerSessionEnabled,
		PerSessionCapacity:   c.PerSessionCapacity,
		PerSessionRefillRate: c.PerSessionRefillRate,
		EndpointLimits:       make(map[string]ratelimit.EndpointLimit),
		BucketTTL:            c.BucketTTL,
		IncludeHeaders:       c.IncludeHeaders,
	}
	if c.SignupEnabled {
		cfg.EndpointLimits["POST "+signupPath] = ratelimit.EndpointLimit{
			Capacity:   c.SignupCapacity,
			RefillRate: c.SignupRefillRate,
		}
	}
	if c.SubmitEnabled {
		cfg.EndpointLimits["POST "+submitPath] = ratelimit.EndpointLimit{
			Capacity:   c.SubmitCapacity,
			RefillRate: c.SubmitRefillRate,
		}
	}
	return cfg
}

// Validate checks capacities of the enabled limits only.
func (c RateLimitConfig) Validate() ValidationErrors {
	var errs []*ValidationError
	if c.GlobalEnabled {
		errs = append(errs, RequirePositive("RATELIMIT_GLOBAL_CAPACITY", c.GlobalCapacity))
	}
	if c.PerIPEnabled {
		errs = append(errs, RequirePositive("RATELIMIT_PER_IP_CAPACITY", c.PerIPCapacity))
	}
	if c.PerSessionEnabled {
		errs = append(errs, RequirePositive("RATELIMIT_PER_SESSION_CAPACITY", c.PerSessionCapacity))
	}
	if c.SignupEnabled {
		errs = append(errs, RequirePositive("RATELIMIT_SIGNUP_CAPACITY", c.SignupCapacity))
	}
	if c.SubmitEnabled {
		errs = append(errs, RequirePositive("RATELIMIT_SUBMIT_CAPACITY", c.SubmitCapacity))
	}
	errs = append(errs, RequirePositiveDuration("RATELIMIT_BUCKET_TTL", c.BucketTTL))
	return CollectErrors(errs...)
}
