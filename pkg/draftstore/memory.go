package draftstore

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps drafts in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source, used by tests to move time forward.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an in-memory store. A non-positive ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		records: make(map[string]memoryRecord),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func memoryKey(scope, key string) string {
	return scope + "/" + key
}

func (s *MemoryStore) Save(ctx context.Context, scope, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[memoryKey(scope, key)] = memoryRecord{
		value:     stored,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, scope, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey(scope, key)
	rec, ok := s.records[k]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(rec.expiresAt) {
		delete(s.records, k)
		return nil, ErrNotFound
	}

	out := make([]byte, len(rec.value))
	copy(out, rec.value)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, memoryKey(scope, key))
	return nil
}

// DeleteExpired drops every record past its expiry.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, rec := range s.records {
		if !now.Before(rec.expiresAt) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of records held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
