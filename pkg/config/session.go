package config

import "time"

const insecureSessionSecret = "change-me-signup-session-secret"

// SessionConfig controls the signed signup_session cookie
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET" env-default:"change-me-signup-session-secret"`
	CookieSecure bool          `env:"COOKIE_SECURE" env-default:"false"`
	TTL          time.Duration `env:"SESSION_TTL" env-default:"24h"`
}

// Validate rejects the built-in secret in production.
func (s SessionConfig) Validate() ValidationErrors {
	errs := CollectErrors(
		RequireMinLength("SESSION_SECRET", s.Secret, 16),
		RequirePositiveDuration("SESSION_TTL", s.TTL),
	)
	if IsProduction() && s.Secret == insecureSessionSecret {
		errs = append(errs, ValidationError{Field: "SESSION_SECRET", Message: "must be set in production"})
	}
	return errs
}
