package signup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultSimulatedDelay stands in for the account service round trip.
const DefaultSimulatedDelay = time.Second

// ErrSimulatedFailure is returned by a SimulatedFinalizer configured to fail.
var ErrSimulatedFailure = errors.New("simulated account creation failure")

// Finalizer turns a completed signup into an account.
type Finalizer interface {
	CreateAccount(ctx context.Context, data CompleteSignupData) (*AccountResult, error)
}

// FinalizerFunc adapts a function to the Finalizer interface.
type FinalizerFunc func(ctx context.Context, data CompleteSignupData) (*AccountResult, error)

func (f FinalizerFunc) CreateAccount(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
	return f(ctx, data)
}

// SimulatedFinalizer waits a fixed delay and then succeeds, or fails with
// FailWith when it is set. No account is stored anywhere.
type SimulatedFinalizer struct {
	Delay    time.Duration
	FailWith error
}

func NewSimulatedFinalizer(delay time.Duration) *SimulatedFinalizer {
	return &SimulatedFinalizer{Delay: delay}
}

func (f *SimulatedFinalizer) CreateAccount(ctx context.Context, data CompleteSignupData) (*AccountResult, error) {
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if f.FailWith != nil {
		return nil, f.FailWith
	}

	result := &AccountResult{
		AccountID:   uuid.New().String(),
		Email:       data.Email,
		AccountType: data.AccountType,
		CreatedAt:   time.Now().UTC(),
	}
	slog.Info("Simulated account created", "account_id", result.AccountID, "account_type", result.AccountType)
	return result, nil
}
