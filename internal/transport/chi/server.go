package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
	"github.com/sydlabs/noteseek/internal/domain/keyword"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
	collectionuc "github.com/sydlabs/noteseek/internal/usecase/collection"
	healthuc "github.com/sydlabs/noteseek/internal/usecase/health"
	noteuc "github.com/sydlabs/noteseek/internal/usecase/note"
	searchuc "github.com/sydlabs/noteseek/internal/usecase/search"
	usageuc "github.com/sydlabs/noteseek/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires use case services into HTTP handlers.
type Server struct {
	search        *searchuc.Service
	notes         *noteuc.Service
	collections   *collectionuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	catalog       *keyword.Catalog
	collection    string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. collection is the active collection name.
func NewServer(
	search *searchuc.Service,
	notes *noteuc.Service,
	collections *collectionuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	catalog *keyword.Catalog,
	collection string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		notes:       notes,
		collections: collections,
		usage:       usage,
		health:      health,
		catalog:     catalog,
		collection:  collection,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoteNotFound, http.StatusNotFound, codeNoteNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrInvalidNote, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeGenerationProviderError),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search/conflicts", s.handleConflicts)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", s.handleListNotes)
			r.Post("/batch", s.handleBatchUpsert)
			r.Put("/{id}", s.handleUpsertNote)
			r.Get("/{id}", s.handleGetNote)
			r.Delete("/{id}", s.handleDeleteNote)
		})

		r.Route("/collection", func(r chi.Router) {
			r.Get("/", s.handleDescribeCollection)
			r.Delete("/", s.handleDropCollection)
		})

		r.Route("/keywords", func(r chi.Router) {
			r.Get("/", s.handleGetKeywords)
			r.Put("/expansions/{keyword}", s.handleSetExpansions)
			r.Delete("/expansions/{keyword}", s.handleRemoveExpansions)
			r.Put("/themes/{theme}", s.handleSetTheme)
			r.Delete("/themes/{theme}", s.handleRemoveTheme)
		})

		r.Get("/usage", s.handleUsage)
	})
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
	}
	withSummary := req.WithSummary != nil && *req.WithSummary
	customPrompt := ""
	if req.CustomPrompt != nil {
		customPrompt = *req.CustomPrompt
	}

	searchReq, err := domsearch.NewRequest(req.Query, topK, withSummary, customPrompt)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	result, err := s.search.Search(ctx, searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResultToDTO(result))
}

// handleConflicts handles GET /api/v1/search/conflicts?query=...
func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query parameter is required")
		return
	}

	report := s.search.DetectConflict(query, r.URL.Query().Get("content"))
	writeJSON(w, http.StatusOK, conflictResponse{
		HasConflict:       report.HasConflict,
		QueryTheme:        report.QueryTheme,
		ConflictingThemes: report.ConflictingThemes,
	})
}

// handleUpsertNote handles PUT /api/v1/notes/{id}.
func (s *Server) handleUpsertNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	n, err := domnote.New(id, req.Title, req.Content, req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	stored, created, err := s.notes.Upsert(ctx, n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/notes/%s", id))
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, status, noteToDTO(stored))
}

// handleGetNote handles GET /api/v1/notes/{id}.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteToDTO(n))
}

// handleDeleteNote handles DELETE /api/v1/notes/{id}.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListNotes handles GET /api/v1/notes?offset=&limit=.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	notes, total, err := s.notes.List(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]noteResponse, len(notes))
	for i, n := range notes {
		items[i] = noteToDTO(n)
	}
	writeJSON(w, http.StatusOK, noteListResponse{
		Items:  items,
		Total:  total,
		Offset: offset,
		Limit:  len(items),
	})
}

// handleBatchUpsert handles POST /api/v1/notes/batch.
func (s *Server) handleBatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req batchUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Notes) == 0 || len(req.Notes) > noteuc.MaxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("notes count must be between 1 and %d", noteuc.MaxBatchSize))
		return
	}

	notes := make([]domnote.Note, 0, len(req.Notes))
	for _, item := range req.Notes {
		n, err := domnote.New(item.ID, item.Title, item.Content, item.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("note %q: %s", item.ID, err.Error()))
			return
		}
		notes = append(notes, n)
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	if err := s.notes.UpsertBatch(ctx, notes); err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, batchUpsertResponse{Upserted: len(notes)})
}

// handleDescribeCollection handles GET /api/v1/collection.
func (s *Server) handleDescribeCollection(w http.ResponseWriter, r *http.Request) {
	info, err := s.collections.Describe(r.Context(), s.collection)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collectionResponse{
		Name:      info.Name,
		VectorDim: info.VectorDim,
		NoteCount: info.NoteCount,
		CreatedAt: time.UnixMilli(info.CreatedAt).UTC(),
	})
}

// handleDropCollection handles DELETE /api/v1/collection.
func (s *Server) handleDropCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.collections.Drop(r.Context(), s.collection); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetKeywords handles GET /api/v1/keywords.
func (s *Server) handleGetKeywords(w http.ResponseWriter, _ *http.Request) {
	expansions, themes := s.catalog.Snapshot()
	writeJSON(w, http.StatusOK, keywordsResponse{
		Expansions: expansions,
		Themes:     themes,
	})
}

// handleSetExpansions handles PUT /api/v1/keywords/expansions/{keyword}.
func (s *Server) handleSetExpansions(w http.ResponseWriter, r *http.Request) {
	seed := chi.URLParam(r, "keyword")

	var req termsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "terms must not be empty")
		return
	}

	s.catalog.SetExpansions(seed, req.Terms)
	writeJSON(w, http.StatusOK, map[string][]string{seed: s.catalog.Expansions(seed)})
}

// handleRemoveExpansions handles DELETE /api/v1/keywords/expansions/{keyword}.
func (s *Server) handleRemoveExpansions(w http.ResponseWriter, r *http.Request) {
	s.catalog.RemoveExpansions(chi.URLParam(r, "keyword"))
	w.WriteHeader(http.StatusNoContent)
}

// handleSetTheme handles PUT /api/v1/keywords/themes/{theme}.
func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	theme := chi.URLParam(r, "theme")

	var req termsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Terms) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "terms must not be empty")
		return
	}

	s.catalog.SetThemeTerms(theme, req.Terms)
	writeJSON(w, http.StatusOK, map[string][]string{theme: s.catalog.ThemeTerms(theme)})
}

// handleRemoveTheme handles DELETE /api/v1/keywords/themes/{theme}.
func (s *Server) handleRemoveTheme(w http.ResponseWriter, r *http.Request) {
	s.catalog.RemoveThemeTerms(chi.URLParam(r, "theme"))
	w.WriteHeader(http.StatusNoContent)
}

// handleUsage handles GET /api/v1/usage.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.Report(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usageResponse{
		Day:              report.Day,
		EmbeddingTokens:  report.EmbeddingTokens,
		GenerationTokens: report.GenerationTokens,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// --- Helpers ---

func searchResultToDTO(result domsearch.Result) searchResponse {
	matches := make([]searchMatch, len(result.Matches))
	for i, m := range result.Matches {
		matches[i] = searchMatch{
			NoteID:      m.NoteID,
			Title:       m.Title,
			Content:     m.Content,
			URL:         m.URL,
			Score:       m.Score,
			VectorScore: m.VectorScore,
		}
	}

	resp := searchResponse{
		Query:         result.Query,
		ExpandedTerms: result.ExpandedTerms,
		Matches:       matches,
		Total:         result.Total,
	}
	if result.HasSummary {
		summary := result.Summary
		resp.Summary = &summary
	}
	return resp
}

func noteToDTO(n domnote.Note) noteResponse {
	return noteResponse{
		ID:        n.ID(),
		Title:     n.Title(),
		Content:   n.Content(),
		URL:       n.URL(),
		CreatedAt: time.UnixMilli(n.CreatedAt()).UTC(),
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoteNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidQuery,
		domain.ErrInvalidNote,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
