package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
	"github.com/sydlabs/noteseek/internal/logger"
)

// Over-fetch: the vector store returns more candidates than requested so the
// keyword boosts have room to reorder before truncation.
const (
	overFetchFactor = 3
	minOverFetch    = 20
)

// summaryUnavailableMessage replaces the summary when generation fails. The
// search result itself still goes out.
const summaryUnavailableMessage = "总结生成失败，请稍后重试。"

// Service runs the search pipeline: embed the query, retrieve candidates by
// vector similarity, re-rank with keyword boosts, optionally summarize.
type Service struct {
	repo       Repository
	embed      Embedder
	expander   *Expander
	conflicts  *ConflictDetector
	scorer     *Scorer
	ranker     *Ranker
	summarizer *Summarizer
}

// New creates a search service and wires the catalog-backed pipeline stages.
func New(repo Repository, embed Embedder, catalog Catalog, gen Generator, log *zap.Logger) *Service {
	expander := NewExpander(catalog)
	conflicts := NewConflictDetector(catalog)
	scorer := NewScorer(expander, conflicts)

	return &Service{
		repo:       repo,
		embed:      embed,
		expander:   expander,
		conflicts:  conflicts,
		scorer:     scorer,
		ranker:     NewRanker(expander, log),
		summarizer: NewSummarizer(scorer, gen),
	}
}

// Search executes a hybrid note search.
func (s *Service) Search(ctx context.Context, req domsearch.Request) (domsearch.Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return domsearch.Result{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}

	emb, err := s.embed.Embed(ctx, req.Query)
	if err != nil {
		return domsearch.Result{}, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	fetchK := req.TopK * overFetchFactor
	if fetchK < minOverFetch {
		fetchK = minOverFetch
	}

	candidates, err := s.repo.SearchKNN(ctx, emb.Embedding, fetchK)
	if err != nil {
		return domsearch.Result{}, fmt.Errorf("search knn: %w", err)
	}

	matches := s.ranker.Rank(req.Query, candidates, req.TopK)

	result := domsearch.Result{
		Query:         req.Query,
		Matches:       matches,
		Total:         len(matches),
		ExpandedTerms: s.expander.Expand(req.Query),
	}

	if req.WithSummary {
		result.Summary = s.summarize(ctx, req, matches)
		result.HasSummary = true
	}

	return result, nil
}

// DetectConflict exposes theme conflict detection for a single query/content
// pair.
func (s *Service) DetectConflict(query, content string) domsearch.ConflictReport {
	return s.conflicts.Detect(query, content)
}

// summarize never fails the search: a generation error degrades to a
// placeholder summary.
func (s *Service) summarize(ctx context.Context, req domsearch.Request, matches []domsearch.Match) string {
	gen, err := s.summarizer.Summarize(ctx, req.Query, matches, req.CustomPrompt)
	if err != nil {
		logger.FromContext(ctx).Warn("Summary generation failed",
			zap.String("query", req.Query), zap.Error(err))
		return summaryUnavailableMessage
	}
	return gen.Text
}
