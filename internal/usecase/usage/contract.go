package usage

import (
	"context"
	"time"
)

// Store persists daily token counters.
type Store interface {
	Incr(ctx context.Context, kind string, day time.Time, tokens int64) error
	Get(ctx context.Context, kind string, day time.Time) (int64, error)
}
