package noteseek

import (
	"time"

	domnote "github.com/sydlabs/noteseek/internal/domain/note"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// Note is a short social post: a title, free-form content and a link back to
// the source.
type Note struct {
	ID        string
	Title     string
	Content   string
	URL       string
	CreatedAt time.Time
}

// SearchRequest describes a semantic search over the note collection.
type SearchRequest struct {
	Query        string
	TopK         int    // 0 = default
	WithSummary  bool   // generate an LLM summary of the results
	CustomPrompt string // replaces the default summary instruction
}

// Match is a single ranked search hit.
type Match struct {
	NoteID      string
	Title       string
	Content     string
	URL         string
	Score       float64 // hybrid vector + keyword score
	VectorScore float64 // raw cosine similarity
}

// SearchResult is the ranked result set for one query.
type SearchResult struct {
	Query         string
	ExpandedTerms []string
	Matches       []Match
	Total         int
	Summary       string
	HasSummary    bool
}

// ConflictReport flags content whose theme differs from the query's theme.
type ConflictReport struct {
	HasConflict       bool
	QueryTheme        string
	ConflictingThemes []string
}

// CollectionInfo describes the note collection.
type CollectionInfo struct {
	Name      string
	VectorDim int
	NoteCount int
	CreatedAt time.Time
}

// UsageReport contains today's token consumption.
type UsageReport struct {
	Day              string
	EmbeddingTokens  int64
	GenerationTokens int64
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

func noteFromDomain(n domnote.Note) Note {
	return Note{
		ID:        n.ID(),
		Title:     n.Title(),
		Content:   n.Content(),
		URL:       n.URL(),
		CreatedAt: time.UnixMilli(n.CreatedAt()).UTC(),
	}
}

func resultFromDomain(r domsearch.Result) SearchResult {
	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = Match{
			NoteID:      m.NoteID,
			Title:       m.Title,
			Content:     m.Content,
			URL:         m.URL,
			Score:       m.Score,
			VectorScore: m.VectorScore,
		}
	}
	return SearchResult{
		Query:         r.Query,
		ExpandedTerms: r.ExpandedTerms,
		Matches:       matches,
		Total:         r.Total,
		Summary:       r.Summary,
		HasSummary:    r.HasSummary,
	}
}
