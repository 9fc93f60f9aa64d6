package note

import (
	"context"
	"fmt"
	"time"

	"github.com/sydlabs/noteseek/internal/domain"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
)

// MaxBatchSize limits a single batch upsert.
const MaxBatchSize = 100

// Service handles note CRUD with automatic vectorization.
type Service struct {
	repo            Repository
	embedder        Embedder
	vectorDim       int
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// New creates a note service. vectorDim > 0 enables dimension validation.
func New(repo Repository, embedder Embedder, vectorDim int) *Service {
	return &Service{
		repo:            repo,
		embedder:        embedder,
		vectorDim:       vectorDim,
		defaultPageSize: 20,
		maxPageSize:     100,
		now:             time.Now,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or updates a note with automatic vectorization.
// The creation timestamp of an existing note is preserved.
// Returns the stored note and true if it was created.
func (s *Service) Upsert(ctx context.Context, n domnote.Note) (domnote.Note, bool, error) {
	result, err := s.embedder.Embed(ctx, n.EmbeddingText())
	if err != nil {
		return domnote.Note{}, false, fmt.Errorf("vectorize note: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	if err := s.checkDim(result.Embedding); err != nil {
		return domnote.Note{}, false, err
	}

	n = s.withTimestamp(ctx, n)

	created, err := s.repo.Upsert(ctx, n, result.Embedding)
	if err != nil {
		return domnote.Note{}, false, fmt.Errorf("upsert note: %w", err)
	}
	return n, created, nil
}

// UpsertBatch creates or updates multiple notes with a single embedding call.
func (s *Service) UpsertBatch(ctx context.Context, notes []domnote.Note) error {
	if len(notes) == 0 {
		return nil
	}
	if len(notes) > MaxBatchSize {
		return fmt.Errorf("batch size %d exceeds limit %d: %w", len(notes), MaxBatchSize, domain.ErrInvalidNote)
	}

	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = n.EmbeddingText()
	}

	result, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("vectorize batch: %w", err)
	}
	if len(result.Embeddings) != len(notes) {
		return fmt.Errorf("batch embed returned %d vectors for %d notes", len(result.Embeddings), len(notes))
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	for i := range notes {
		if err := s.checkDim(result.Embeddings[i]); err != nil {
			return fmt.Errorf("note %s: %w", notes[i].ID(), err)
		}
		notes[i] = s.withTimestamp(ctx, notes[i])
	}

	if err := s.repo.UpsertBatch(ctx, notes, result.Embeddings); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// Get retrieves a note by ID.
func (s *Service) Get(ctx context.Context, id string) (domnote.Note, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// List returns a paginated list of notes and the total count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domnote.Note, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	notes, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	return notes, total, nil
}

// Count returns the number of stored notes.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

func (s *Service) checkDim(vec []float32) error {
	if s.vectorDim > 0 && len(vec) != s.vectorDim {
		return fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(vec), s.vectorDim, domain.ErrVectorDimMismatch,
		)
	}
	return nil
}

// withTimestamp preserves the creation time of an existing note,
// or stamps a new one.
func (s *Service) withTimestamp(ctx context.Context, n domnote.Note) domnote.Note {
	existing, err := s.repo.Get(ctx, n.ID())
	if err == nil && existing.CreatedAt() > 0 {
		return n.WithCreatedAt(existing.CreatedAt())
	}
	// Missing note or a transient read failure: stamp fresh, the write decides.
	return n.WithCreatedAt(s.now().UnixMilli())
}
