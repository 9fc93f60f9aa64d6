package health

import "context"

// DBPinger checks that the Redis store holding notes and vectors responds.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks the provider that vectorizes notes and queries.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
