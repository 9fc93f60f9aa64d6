package chi

import "time"

// errorCode enumerates machine-readable error identifiers.
type errorCode string

const (
	codeBadRequest              errorCode = "bad_request"
	codeValidationFailed        errorCode = "validation_failed"
	codeInvalidQuery            errorCode = "invalid_query"
	codeNotFound                errorCode = "not_found"
	codeNoteNotFound            errorCode = "note_not_found"
	codeAlreadyExists           errorCode = "already_exists"
	codeVectorDimMismatch       errorCode = "vector_dim_mismatch"
	codeRateLimited             errorCode = "rate_limited"
	codeEmbeddingProviderError  errorCode = "embedding_provider_error"
	codeGenerationProviderError errorCode = "generation_provider_error"
	codeUnauthorized            errorCode = "unauthorized"
	codeInternalError           errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// --- Search ---

type searchRequest struct {
	Query        string  `json:"query"`
	TopK         *int    `json:"top_k,omitempty"`
	WithSummary  *bool   `json:"with_summary,omitempty"`
	CustomPrompt *string `json:"custom_prompt,omitempty"`
}

type searchMatch struct {
	NoteID      string  `json:"note_id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	URL         string  `json:"url,omitempty"`
	Score       float64 `json:"score"`
	VectorScore float64 `json:"vector_score"`
}

type searchResponse struct {
	Query         string        `json:"query"`
	ExpandedTerms []string      `json:"expanded_terms"`
	Matches       []searchMatch `json:"matches"`
	Total         int           `json:"total"`
	Summary       *string       `json:"summary,omitempty"`
}

type conflictResponse struct {
	HasConflict       bool     `json:"has_conflict"`
	QueryTheme        string   `json:"query_theme,omitempty"`
	ConflictingThemes []string `json:"conflicting_themes,omitempty"`
}

// --- Notes ---

type upsertNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type noteListResponse struct {
	Items  []noteResponse `json:"items"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

type batchNoteItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

type batchUpsertRequest struct {
	Notes []batchNoteItem `json:"notes"`
}

type batchUpsertResponse struct {
	Upserted int `json:"upserted"`
}

// --- Collection ---

type collectionResponse struct {
	Name      string    `json:"name"`
	VectorDim int       `json:"vector_dim"`
	NoteCount int       `json:"note_count"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Keywords ---

type keywordsResponse struct {
	Expansions map[string][]string `json:"expansions"`
	Themes     map[string][]string `json:"themes"`
}

type termsRequest struct {
	Terms []string `json:"terms"`
}

// --- Usage ---

type usageResponse struct {
	Day              string `json:"day"`
	EmbeddingTokens  int64  `json:"embedding_tokens"`
	GenerationTokens int64  `json:"generation_tokens"`
}

// --- Health ---

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
