package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SignupKey is the fixed key the signup wizard stores its step-1 record under.
const SignupKey = "signupData"

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned by Load when no live record exists for the scope and key.
var ErrNotFound = errors.New("draft not found")

// Store persists serialized drafts for a browser session.
// scope is the session ID, key identifies the record within the session.
type Store interface {
	Save(ctx context.Context, scope, key string, value []byte) error
	Load(ctx context.Context, scope, key string) ([]byte, error)
	Clear(ctx context.Context, scope, key string) error
}

// Sweeper is implemented by stores that need periodic removal of expired records.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SaveJSON encodes v and saves it under scope/key.
func SaveJSON(ctx context.Context, s Store, scope, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return s.Save(ctx, scope, key, data)
}

// LoadJSON loads scope/key into v. A record that does not decode is treated
// as absent and reported as ErrNotFound.
func LoadJSON(ctx context.Context, s Store, scope, key string, v interface{}) error {
	data, err := s.Load(ctx, scope, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Discarding malformed draft", "scope", scope, "key", key, "error", err)
		return ErrNotFound
	}
	return nil
}

// RunSweeper calls DeleteExpired on every tick until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				slog.Error("Failed to delete expired records", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("Deleted expired records", "count", n)
			}
		}
	}
}
