package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-onboarding/pkg/account"
	"github.com/tendant/simple-onboarding/pkg/client"
	pkgconfig "github.com/tendant/simple-onboarding/pkg/config"
	"github.com/tendant/simple-onboarding/pkg/draftstore"
	"github.com/tendant/simple-onboarding/pkg/notification"
	"github.com/tendant/simple-onboarding/pkg/ratelimit"
	"github.com/tendant/simple-onboarding/pkg/session"
	"github.com/tendant/simple-onboarding/pkg/signup"
	v2 "github.com/tendant/simple-onboarding/pkg/signup/handler/v2"
)

type Config struct {
	AppConfig        app.AppConfig
	DatabaseConfig   pkgconfig.DatabaseConfig
	SessionConfig    pkgconfig.SessionConfig
	DraftStoreConfig pkgconfig.DraftStoreConfig
	FinalizerConfig  pkgconfig.FinalizerConfig
	EmailConfig      pkgconfig.EmailConfig
	RateLimitConfig  pkgconfig.RateLimitConfig
	AccountsInDb     bool `env:"ACCOUNTS_IN_DB" env-default:"false"`
}

// loadEnvFile loads environment variables from .env file if it exists
// Only sets variables that are not already set in the environment
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}

	envFile := filepath.Join(filepath.Dir(execPath), ".env")

	// Also check current working directory
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Info("No .env file found", "path", envFile)
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "error", err, "path", envFile)
		return
	}
	slog.Info("Configuration loaded from .env file", "path", envFile)
}

// lazyPool opens the shared pool the first time a component needs Postgres.
type lazyPool struct {
	config pkgconfig.DatabaseConfig
	pool   *pgxpool.Pool
}

func (l *lazyPool) get(ctx context.Context) *pgxpool.Pool {
	if l.pool != nil {
		return l.pool
	}
	pool, err := pgxpool.New(ctx, l.config.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", l.config.Database, "host", l.config.Host, "port", l.config.Port, "user", l.config.User, "schema", l.config.Schema, "error", err)
		os.Exit(-1)
	}
	l.pool = pool
	return pool
}

func createDraftStore(ctx context.Context, cfg pkgconfig.DraftStoreConfig, db *lazyPool) draftstore.Store {
	var store draftstore.Store
	switch cfg.Backend {
	case pkgconfig.DraftBackendPostgres:
		pg := draftstore.NewPostgresStore(db.get(ctx), cfg.TTL)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("Failed creating drafts table", "error", err)
			os.Exit(-1)
		}
		store = pg
	case pkgconfig.DraftBackendRedis:
		rs, err := draftstore.NewRedisStore(draftstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.TTL,
		})
		if err != nil {
			slog.Error("Failed connecting to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(-1)
		}
		store = rs
	default:
		store = draftstore.NewMemoryStore(cfg.TTL)
	}

	if sweeper, ok := store.(draftstore.Sweeper); ok && cfg.SweepInterval > 0 {
		go draftstore.RunSweeper(ctx, sweeper, cfg.SweepInterval)
	}
	slog.Info("Draft store configured", "backend", cfg.Backend, "ttl", cfg.TTL)
	return store
}

func createFinalizer(ctx context.Context, config *Config, db *lazyPool) signup.Finalizer {
	switch config.FinalizerConfig.Mode {
	case pkgconfig.FinalizerRemote:
		slog.Info("Accounts are created remotely", "url", config.FinalizerConfig.RemoteURL)
		return client.NewRemoteFinalizer(config.FinalizerConfig.RemoteURL,
			client.WithHTTPClient(&http.Client{Timeout: config.FinalizerConfig.RemoteTimeout}))
	case pkgconfig.FinalizerLocal:
		var repo account.Repository
		if config.AccountsInDb {
			pg := account.NewPostgresRepository(db.get(ctx))
			if err := pg.EnsureSchema(ctx); err != nil {
				slog.Error("Failed creating accounts table", "error", err)
				os.Exit(-1)
			}
			repo = pg
		} else {
			repo = account.NewInMemoryRepository()
		}

		var opts []account.Option
		if config.EmailConfig.Enabled {
			manager, err := notification.NewNotificationManagerWithOptions(
				notification.WithSMTP(config.EmailConfig.ToSMTPConfig()),
				notification.WithWelcomeTemplates(),
			)
			if err != nil {
				slog.Error("Failed initializing notification manager", "error", err)
				os.Exit(-1)
			}
			opts = append(opts, account.WithWelcomeSender(manager))
		}
		slog.Info("Accounts are created locally", "db", config.AccountsInDb, "welcome_email", config.EmailConfig.Enabled)
		return account.NewService(repo, opts...)
	default:
		return signup.NewSimulatedFinalizer(config.FinalizerConfig.Delay)
	}
}

func main() {

	// Create a logger with source enabled
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true, // Enables line number & file path
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	config := Config{}
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed reading configuration", "error", err)
		os.Exit(-1)
	}
	config.RateLimitConfig = pkgconfig.NewRateLimitConfigFromEnv()

	if err := pkgconfig.Validate(
		config.SessionConfig.Validate,
		config.DraftStoreConfig.Validate,
		config.FinalizerConfig.Validate,
		config.EmailConfig.Validate,
		config.RateLimitConfig.Validate,
	); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := &lazyPool{config: config.DatabaseConfig}
	store := createDraftStore(ctx, config.DraftStoreConfig, db)
	finalizer := createFinalizer(ctx, &config, db)

	wizard := signup.NewWizard(
		signup.WithDraftStore(store),
		signup.WithFinalizer(finalizer),
		signup.WithPageTTL(config.DraftStoreConfig.TTL),
	)
	pageSweep := config.DraftStoreConfig.SweepInterval
	if pageSweep <= 0 {
		pageSweep = config.DraftStoreConfig.TTL
	}
	go draftstore.RunSweeper(ctx, wizard, pageSweep)

	sessions := session.NewManager([]byte(config.SessionConfig.Secret),
		session.WithTTL(config.SessionConfig.TTL),
		session.WithSecureCookie(config.SessionConfig.CookieSecure),
	)

	rateLimitMiddleware := ratelimit.NewMiddleware(config.RateLimitConfig.ToMiddlewareConfig(
		string(signup.RouteSignup), string(signup.RouteSignupDetails)+"/submit"))
	defer rateLimitMiddleware.Stop()
	slog.Info("Rate limiting configured",
		"global", config.RateLimitConfig.GlobalEnabled,
		"per_ip", config.RateLimitConfig.PerIPEnabled,
		"per_session", config.RateLimitConfig.PerSessionEnabled)

	server := app.DefaultApp()

	app.RegisterHealthzRoutes(server.R)

	signupHandle := v2.NewHandle(wizard)
	server.R.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Use(rateLimitMiddleware.Handler)
		signupHandle.RegisterRoutes(r)
	})

	server.Run()
}
