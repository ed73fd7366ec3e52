// Package local provides single-process stand-ins for the Redis-backed lock,
// bus, rate limiter and quote cache. They back the memory driver and tests.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// LockManager is an in-process domain.LockManager with TTL expiry.
type LockManager struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewLockManager() *LockManager {
	return &LockManager{held: make(map[string]time.Time), now: time.Now}
}

func (lm *LockManager) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if exp, ok := lm.held[key]; ok && lm.now().Before(exp) {
		return nil, fmt.Errorf("local: lock %s: %w", key, domain.ErrLockHeld)
	}
	exp := lm.now().Add(ttl)
	lm.held[key] = exp

	var once sync.Once
	return func() {
		once.Do(func() {
			lm.mu.Lock()
			defer lm.mu.Unlock()
			if cur, ok := lm.held[key]; ok && cur.Equal(exp) {
				delete(lm.held, key)
			}
		})
	}, nil
}

// SignalBus fans out published payloads to every live subscriber of a channel.
// Slow subscribers drop messages rather than block publishers.
type SignalBus struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewSignalBus() *SignalBus {
	return &SignalBus{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *SignalBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 128)
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[channel], ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// RateLimiter is an in-process sliding window.
type RateLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{hits: make(map[string][]time.Time), now: time.Now}
}

func (rl *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-window)
	kept := rl.hits[key][:0]
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= limit {
		rl.hits[key] = kept
		return false, nil
	}
	rl.hits[key] = append(kept, now)
	return true, nil
}

// QuoteCache keeps quotes in a map until their TTL passes.
type QuoteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]quoteEntry
	now     func() time.Time
}

type quoteEntry struct {
	q   domain.Quote
	exp time.Time
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QuoteCache{ttl: ttl, entries: make(map[string]quoteEntry), now: time.Now}
}

func (c *QuoteCache) Get(_ context.Context, key string) (domain.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.exp) {
		delete(c.entries, key)
		return domain.Quote{}, domain.ErrNotFound
	}
	return e.q, nil
}

func (c *QuoteCache) Set(_ context.Context, key string, q domain.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = quoteEntry{q: q, exp: c.now().Add(c.ttl)}
	return nil
}

var (
	_ domain.LockManager = (*LockManager)(nil)
	_ domain.SignalBus   = (*SignalBus)(nil)
	_ domain.RateLimiter = (*RateLimiter)(nil)
	_ domain.QuoteCache  = (*QuoteCache)(nil)
)
