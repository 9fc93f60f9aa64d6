package search

import (
	"context"

	"github.com/sydlabs/noteseek/internal/domain"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// Repository defines the storage contract for vector retrieval.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, topK int) ([]domsearch.Candidate, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the LLM summary text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GenerationResult, error)
}

// Catalog is the keyword vocabulary consumed by expansion, conflict detection
// and scoring.
type Catalog interface {
	Expansions(seed string) []string
	ThemeTerms(theme string) []string
	Themes() []string
	IsTheme(term string) bool
}
