package config

import (
	"fmt"
	"net/url"
)

// DatabaseConfig holds PostgreSQL settings for the draft store and accounts
type DatabaseConfig struct {
	Host     string `env:"PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PG_PORT" env-default:"5432"`
	Database string `env:"PG_DATABASE" env-default:"onboarding_db"`
	User     string `env:"PG_USER" env-default:"onboarding"`
	Password string `env:"PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Database, d.Schema)
}

