package account

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrEmailExists = errors.New("email already registered")
)

// Repository defines the interface for account data access
type Repository interface {
	// Create stores a new account. It returns ErrEmailExists when the email is taken.
	Create(ctx context.Context, account *Account) error

	// GetByEmail returns ErrNotFound when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
