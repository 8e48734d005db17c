package account

import (
	"context"
	"strings"
	"sync"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account // keyed by lowercased email
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]*Account),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := r.accounts[key]; exists {
		return ErrEmailExists
	}
	stored := *account
	stored.Skills = append([]string(nil), account.Skills...)
	r.accounts[key] = &stored
	return nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *stored
	out.Skills = append([]string(nil), stored.Skills...)
	return &out, nil
}

// Count returns the number of stored accounts
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
