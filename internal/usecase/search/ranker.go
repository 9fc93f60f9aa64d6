package search

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// Hybrid boost weights: a keyword hit in the title is worth three content hits.
const (
	titleBoost   = 0.3
	contentBoost = 0.1
)

// Ranker combines vector similarity with keyword boosts. Any panic inside the
// hybrid path degrades to pure vector ordering instead of failing the search.
type Ranker struct {
	expander *Expander
	logger   *zap.Logger
}

// NewRanker creates a hybrid ranker.
func NewRanker(expander *Expander, logger *zap.Logger) *Ranker {
	return &Ranker{expander: expander, logger: logger}
}

// Rank scores candidates with hybrid boosts, sorts descending and truncates
// to topK. The stable sort keeps the vector-store order for equal scores.
func (r *Ranker) Rank(query string, candidates []domsearch.Candidate, topK int) []domsearch.Match {
	if topK <= 0 || len(candidates) == 0 {
		return []domsearch.Match{}
	}

	matches, err := r.rankHybrid(query, candidates, topK)
	if err != nil {
		r.logger.Warn("Hybrid ranking failed, falling back to vector order",
			zap.String("query", query), zap.Error(err))
		return vectorOrder(candidates, topK)
	}
	return matches
}

func (r *Ranker) rankHybrid(
	query string, candidates []domsearch.Candidate, topK int,
) (matches []domsearch.Match, err error) {
	defer func() {
		if p := recover(); p != nil {
			matches = nil
			err = fmt.Errorf("rank hybrid: %v", p)
		}
	}()

	terms := r.expander.Expand(query)
	termsLower := make([]string, len(terms))
	for i, t := range terms {
		termsLower[i] = strings.ToLower(t)
	}

	matches = make([]domsearch.Match, len(candidates))
	for i, c := range candidates {
		titleLower := strings.ToLower(c.Title)
		contentLower := strings.ToLower(c.Content)

		score := c.VectorScore
		for _, term := range termsLower {
			if strings.Contains(titleLower, term) {
				score += titleBoost
			}
			if strings.Contains(contentLower, term) {
				score += contentBoost
			}
		}
		matches[i] = domsearch.Match{Candidate: c, Score: score}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// vectorOrder is the degraded path: candidates ranked by vector similarity
// alone.
func vectorOrder(candidates []domsearch.Candidate, topK int) []domsearch.Match {
	matches := make([]domsearch.Match, len(candidates))
	for i, c := range candidates {
		matches[i] = domsearch.Match{Candidate: c, Score: c.VectorScore}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
