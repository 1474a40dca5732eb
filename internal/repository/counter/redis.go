// Package counter persists per-user daily AI usage counts.
package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
)

// DefaultTTL keeps a daily counter alive past the end of its day in every timezone.
const DefaultTTL = 48 * time.Hour

var keyPrefix = domain.KeyPrefix + "ai_usage:"

// kvStore is the consumer interface for the Redis-backed counter (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore keeps counts as plain integers under lectio:ai_usage:{user}:{day}.
type RedisStore struct {
	store kvStore
	ttl   time.Duration
}

// NewRedis creates a Redis counter store. ttl <= 0 falls back to DefaultTTL.
func NewRedis(s kvStore, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{store: s, ttl: ttl}
}

// ReadCount returns the stored count or domain.ErrNotFound when no usage exists.
func (s *RedisStore) ReadCount(ctx context.Context, userID int64, day quota.Day) (int, error) {
	key := Key(userID, day)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("counter GET %s: %w", key, err)
	}

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("counter GET %s parse: %w", key, err)
	}
	return n, nil
}

// UpsertCount overwrites the count and refreshes the key TTL.
func (s *RedisStore) UpsertCount(ctx context.Context, userID int64, day quota.Day, n int) error {
	key := Key(userID, day)
	if err := s.store.SetWithTTL(ctx, key, []byte(strconv.Itoa(n)), s.ttl); err != nil {
		return fmt.Errorf("counter SET %s: %w", key, err)
	}
	return nil
}

// Key builds the storage key for (userID, day).
func Key(userID int64, day quota.Day) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":" + day.String()
}
