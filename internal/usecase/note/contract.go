package note

import (
	"context"

	"github.com/sydlabs/noteseek/internal/domain"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
)

// Repository defines the storage contract for notes.
type Repository interface {
	Upsert(ctx context.Context, n domnote.Note, vector []float32) (created bool, err error)
	UpsertBatch(ctx context.Context, notes []domnote.Note, vectors [][]float32) error
	Get(ctx context.Context, id string) (domnote.Note, error)
	List(ctx context.Context, offset, limit int) (notes []domnote.Note, total int, err error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
