package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-onboarding/pkg/signup"
)

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               UUID        PRIMARY KEY,
	email            TEXT        NOT NULL,
	password_hash    BYTEA       NOT NULL,
	first_name       TEXT        NOT NULL,
	last_name        TEXT        NOT NULL,
	account_type     TEXT        NOT NULL,
	marketing_opt_in BOOLEAN     NOT NULL DEFAULT FALSE,
	job_title        TEXT        NOT NULL DEFAULT '',
	specialization   TEXT        NOT NULL DEFAULT '',
	company_name     TEXT        NOT NULL DEFAULT '',
	skills           TEXT[]      NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (lower(email));
`

const uniqueViolation = "23505"

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// EnsureSchema creates the accounts table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (
			id, email, password_hash, first_name, last_name, account_type,
			marketing_opt_in, job_title, specialization, company_name, skills, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	skills := account.Skills
	if skills == nil {
		skills = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		string(account.AccountType),
		account.MarketingOptIn,
		account.JobTitle,
		account.Specialization,
		account.CompanyName,
		skills,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT
			id, email, password_hash, first_name, last_name, account_type,
			marketing_opt_in, job_title, specialization, company_name, skills, created_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`

	account := &Account{}
	var accountType string

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&accountType,
		&account.MarketingOptIn,
		&account.JobTitle,
		&account.Specialization,
		&account.CompanyName,
		&account.Skills,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.AccountType = signup.AccountType(accountType)
	return account, nil
}
