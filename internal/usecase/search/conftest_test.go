package search

import (
	"context"

	"github.com/sydlabs/noteseek/internal/domain"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// --- Mocks ---

type mockRepo struct {
	candidates []domsearch.Candidate
	err        error
	called     bool
	lastVector []float32
	lastTopK   int
}

func (m *mockRepo) SearchKNN(
	_ context.Context, vector []float32, topK int,
) ([]domsearch.Candidate, error) {
	m.called = true
	m.lastVector = vector
	m.lastTopK = topK
	return m.candidates, m.err
}

type mockEmbedder struct {
	vec    []float32
	tokens int
	err    error
	called bool
	text   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.called = true
	m.text = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

type mockGenerator struct {
	text   string
	err    error
	called bool
	prompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (domain.GenerationResult, error) {
	m.called = true
	m.prompt = prompt
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text, TotalTokens: 42}, nil
}

// panicCatalog trips the ranker's recover path.
type panicCatalog struct{}

func (panicCatalog) Expansions(string) []string { panic("catalog corrupted") }
func (panicCatalog) ThemeTerms(string) []string { return nil }
func (panicCatalog) Themes() []string           { return nil }
func (panicCatalog) IsTheme(string) bool        { return false }
