package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	capacity   int        // Maximum number of tokens
	tokens     float64    // Current number of tokens
	refillRate float64    // Tokens added per second
	lastSeen   time.Time  // Last time tokens were refilled
	mu         sync.Mutex // Mutex for thread safety
}

// NewTokenBucket creates a full bucket.
// capacity: Maximum number of requests allowed in a burst
// refillRate: Number of requests allowed per second
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucketAt(capacity, refillRate, time.Now())
}

func newTokenBucketAt(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastSeen:   now,
	}
}

// Allow takes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	ok, _ := tb.Take(time.Now())
	return ok
}

// Take refills the bucket up to now and takes a token. When none is left it
// reports how long until the next one.
func (tb *TokenBucket) Take(now time.Time) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if elapsed := now.Sub(tb.lastSeen).Seconds(); elapsed > 0 {
		tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
		tb.lastSeen = now
	}

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true, 0
	}
	if tb.refillRate <= 0 {
		return false, time.Duration(math.MaxInt64)
	}
	wait := (1.0 - tb.tokens) / tb.refillRate
	if wait > math.MaxInt64/float64(time.Second) {
		return false, time.Duration(math.MaxInt64)
	}
	return false, time.Duration(wait * float64(time.Second))
}

// Tokens returns the current number of available tokens
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.tokens
}

// Reset refills the bucket to capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens = float64(tb.capacity)
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastSeen
}

// RateLimiter keeps one token bucket per key (client IP, session id).
type RateLimiter struct {
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate float64
	ttl        time.Duration // Time to keep inactive buckets in memory
	now        func() time.Time
	mu         sync.Mutex
	stop       chan struct{}
	stopOnce   sync.Once
}

// LimiterOption is a functional option for configuring RateLimiter
type LimiterOption func(*RateLimiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) LimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a new rate limiter.
// ttl: time to keep inactive buckets in memory (0 = forever). A positive ttl
// starts a cleanup goroutine that runs until Stop.
func NewRateLimiter(capacity int, refillRate float64, ttl time.Duration, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	if ttl > 0 {
		go rl.cleanupLoop()
	}
	return rl
}

// Allow checks if a request for the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.Take(key)
	return ok
}

// Take is Allow that also reports the wait until the key's next token.
func (rl *RateLimiter) Take(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		bucket = newTokenBucketAt(rl.capacity, rl.refillRate, now)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	return bucket.Take(now)
}

// Reset refills the bucket for a specific key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, exists := rl.buckets[key]; exists {
		bucket.Reset()
	}
}

// Remove removes a specific key from the rate limiter
func (rl *RateLimiter) Remove(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Cleanup drops buckets idle for longer than the ttl and returns how many.
func (rl *RateLimiter) Cleanup() int {
	if rl.ttl <= 0 {
		return 0
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > rl.ttl {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// Stats returns statistics about the rate limiter
type Stats struct {
	ActiveBuckets int
	TotalCapacity int
	RefillRate    float64
}

// GetStats returns current statistics
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		ActiveBuckets: len(rl.buckets),
		TotalCapacity: rl.capacity,
		RefillRate:    rl.refillRate,
	}
}
