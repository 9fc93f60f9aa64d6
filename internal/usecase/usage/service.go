package usage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
)

// Counter kinds.
const (
	KindEmbedding  = "embedding"
	KindGeneration = "generation"
)

// Report is a daily token usage snapshot.
type Report struct {
	Day              string
	EmbeddingTokens  int64
	GenerationTokens int64
}

// Service tracks and reports token usage.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a usage service.
func New(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RecordEmbedding adds embedding tokens to today's counter.
// Accounting failures are logged and swallowed so they never fail the caller.
func (s *Service) RecordEmbedding(ctx context.Context, tokens int) {
	s.record(ctx, KindEmbedding, tokens)
}

// RecordGeneration adds generation tokens to today's counter.
func (s *Service) RecordGeneration(ctx context.Context, tokens int) {
	s.record(ctx, KindGeneration, tokens)
}

func (s *Service) record(ctx context.Context, kind string, tokens int) {
	if tokens <= 0 {
		return
	}
	if err := s.store.Incr(ctx, kind, s.now().UTC(), int64(tokens)); err != nil {
		s.logger.Warn("Usage accounting failed",
			zap.String("kind", kind),
			zap.Int("tokens", tokens),
			zap.Error(err),
		)
	}
}

// Report returns today's usage counters.
func (s *Service) Report(ctx context.Context) (Report, error) {
	day := s.now().UTC()

	embTokens, err := s.store.Get(ctx, KindEmbedding, day)
	if err != nil {
		return Report{}, fmt.Errorf("get embedding usage: %w", err)
	}

	genTokens, err := s.store.Get(ctx, KindGeneration, day)
	if err != nil {
		return Report{}, fmt.Errorf("get generation usage: %w", err)
	}

	return Report{
		Day:              day.Format("2006-01-02"),
		EmbeddingTokens:  embTokens,
		GenerationTokens: genTokens,
	}, nil
}

// TrackedGenerator wraps a TextGenerator and records generation token usage.
type TrackedGenerator struct {
	inner   domain.TextGenerator
	service *Service
}

// NewTrackedGenerator wraps gen with usage accounting.
func NewTrackedGenerator(gen domain.TextGenerator, service *Service) *TrackedGenerator {
	return &TrackedGenerator{inner: gen, service: service}
}

// Generate delegates to the inner generator and records consumed tokens.
func (g *TrackedGenerator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	result, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	g.service.RecordGeneration(ctx, result.TotalTokens)
	return result, nil
}
