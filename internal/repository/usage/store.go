package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sydlabs/noteseek/internal/db"
	"github.com/sydlabs/noteseek/internal/domain"
)

// store is the consumer interface for usage counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// DefaultRetention is how long daily counters are kept after their first write.
const DefaultRetention = 48 * time.Hour

// Store implements daily token usage counters on top of DB (INCRBY + GET with TTL).
type Store struct {
	store     store
	retention time.Duration
}

// New creates a usage store. retention <= 0 falls back to DefaultRetention.
func New(s store, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{store: s, retention: retention}
}

// Incr atomically adds tokens to the daily counter for the given kind.
func (s *Store) Incr(ctx context.Context, kind string, day time.Time, tokens int64) error {
	key := dailyKey(kind, day)
	if err := s.store.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}

	// NX keeps the original expiry so repeated writes do not extend retention.
	if err := s.store.Expire(ctx, key, s.retention, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}
	return nil
}

// Get returns the daily counter value. Returns 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, kind string, day time.Time) (int64, error) {
	key := dailyKey(kind, day)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

func dailyKey(kind string, day time.Time) string {
	return fmt.Sprintf("%susage:%s:daily:%s", domain.KeyPrefix, kind, day.UTC().Format("2006-01-02"))
}
