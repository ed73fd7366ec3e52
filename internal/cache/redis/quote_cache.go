package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// QuoteCache implements domain.QuoteCache as JSON strings with a TTL.
type QuoteCache struct {
	c   *Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache. A zero ttl defaults to one minute.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QuoteCache{c: c, ttl: ttl}
}

// Get returns the cached quote or domain.ErrNotFound on a miss.
func (qc *QuoteCache) Get(ctx context.Context, key string) (domain.Quote, error) {
	raw, err := qc.c.rdb.Get(ctx, qc.c.key("quote", key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Quote{}, domain.ErrNotFound
		}
		return domain.Quote{}, fmt.Errorf("redis: get quote %s: %w", key, err)
	}
	var q domain.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return domain.Quote{}, fmt.Errorf("redis: decode quote %s: %w", key, err)
	}
	return q, nil
}

// Set stores q under key.
func (qc *QuoteCache) Set(ctx context.Context, key string, q domain.Quote) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("redis: encode quote %s: %w", key, err)
	}
	if err := qc.c.rdb.Set(ctx, qc.c.key("quote", key), raw, qc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", key, err)
	}
	return nil
}

var _ domain.QuoteCache = (*QuoteCache)(nil)
