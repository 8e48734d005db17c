package config

import "time"

const (
	DraftBackendMemory   = "memory"
	DraftBackendPostgres = "postgres"
	DraftBackendRedis    = "redis"
)

// DraftStoreConfig selects and tunes the draft store backend
type DraftStoreConfig struct {
	Backend       string        `env:"DRAFT_STORE_BACKEND" env-default:"memory"`
	TTL           time.Duration `env:"DRAFT_TTL" env-default:"30m"`
	SweepInterval time.Duration `env:"DRAFT_SWEEP_INTERVAL" env-default:"5m"`
	RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" env-default:"signup"`
}

func (d DraftStoreConfig) Validate() ValidationErrors {
	errs := CollectErrors(
		RequireOneOf("DRAFT_STORE_BACKEND", d.Backend, []string{DraftBackendMemory, DraftBackendPostgres, DraftBackendRedis}),
		RequirePositiveDuration("DRAFT_TTL", d.TTL),
		RequireNonNegativeDuration("DRAFT_SWEEP_INTERVAL", d.SweepInterval),
	)
	if d.Backend == DraftBackendRedis {
		errs = append(errs, CollectErrors(RequireNonEmpty("REDIS_ADDR", d.RedisAddr))...)
	}
	return errs
}
