// Package search defines the search request and result model shared between
// the transport and the search use case.
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sydlabs/noteseek/internal/domain"
)

const (
	// MaxQueryRunes caps the query length.
	MaxQueryRunes = 500
	// MaxPromptRunes caps a custom summary prompt.
	MaxPromptRunes = 2000
	// MaxTopK caps the requested result count.
	MaxTopK = 100
	// DefaultTopK is the result count for a plain search.
	DefaultTopK = 20
	// DefaultSummaryTopK is the result count when a summary is requested;
	// fewer notes keep the summary prompt focused.
	DefaultSummaryTopK = 5
)

// Request is a validated search request. Build it with NewRequest.
type Request struct {
	Query        string
	TopK         int
	WithSummary  bool
	CustomPrompt string
}

// NewRequest validates inputs and applies topK defaults (topK <= 0 means
// "use the default": 20 plain, 5 with summary).
func NewRequest(query string, topK int, withSummary bool, customPrompt string) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryRunes {
		return Request{}, fmt.Errorf("%w: query too long (%d runes, max %d)", domain.ErrInvalidQuery, n, MaxQueryRunes)
	}
	if n := utf8.RuneCountInString(customPrompt); n > MaxPromptRunes {
		return Request{}, fmt.Errorf("%w: custom prompt too long (%d runes, max %d)", domain.ErrInvalidQuery, n, MaxPromptRunes)
	}
	if topK > MaxTopK {
		return Request{}, fmt.Errorf("%w: top_k too large (max %d)", domain.ErrInvalidQuery, MaxTopK)
	}
	if topK <= 0 {
		if withSummary {
			topK = DefaultSummaryTopK
		} else {
			topK = DefaultTopK
		}
	}

	return Request{
		Query:        query,
		TopK:         topK,
		WithSummary:  withSummary,
		CustomPrompt: customPrompt,
	}, nil
}

// Candidate is a note retrieved from the vector store before hybrid ranking.
type Candidate struct {
	ID          string
	NoteID      string
	Title       string
	Content     string
	URL         string
	VectorScore float64
}

// Match is a ranked candidate. Score is the hybrid score: vector similarity
// plus keyword boosts.
type Match struct {
	Candidate
	Score float64
}

// ConflictReport describes a theme mismatch between a query and a piece of
// content.
type ConflictReport struct {
	HasConflict       bool
	QueryTheme        string
	ConflictingThemes []string
}

// Result is the full search outcome.
type Result struct {
	Query         string
	Matches       []Match
	Total         int
	ExpandedTerms []string
	Summary       string
	HasSummary    bool
}
