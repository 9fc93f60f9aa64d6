package search

import (
	"strings"
	"unicode/utf8"

	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// Scoring weights. Keyword hits dominate, expansion and density hits refine,
// quality multipliers punish thin or off-topic content.
const (
	longKeywordPoints  = 4.0 // keyword longer than 2 runes
	shortKeywordPoints = 3.0
	conflictPenalty    = 0.2
	expansionPoints    = 1.5
	densityPoints      = 0.3

	thinContentRunes      = 50
	shortContentRunes     = 100
	thinContentQuality    = 0.3
	shortContentQuality   = 0.7
	noMatchQuality        = 0.1
	partialMatchQuality   = 0.8
	partialMatchThreshold = 0.5
)

// Scorer rates how relevant a piece of content is to a query. Used by the
// summarizer to pick which notes feed the LLM prompt.
type Scorer struct {
	expander  *Expander
	conflicts *ConflictDetector
}

// NewScorer creates a relevance scorer sharing the catalog-backed components.
func NewScorer(expander *Expander, conflicts *ConflictDetector) *Scorer {
	return &Scorer{expander: expander, conflicts: conflicts}
}

// Score computes the relevance of content to a query. An empty query scores 1
// (neutral). Higher is more relevant; scores feed a threshold, not a
// normalized scale.
func (s *Scorer) Score(content, query string) float64 {
	if strings.TrimSpace(query) == "" {
		return 1
	}

	keywords := significantTokens(strings.ToLower(query))
	contentLower := strings.ToLower(content)

	var score float64
	matchCount := 0
	for _, kw := range keywords {
		if !strings.Contains(contentLower, kw) {
			continue
		}
		matchCount++
		if utf8.RuneCountInString(kw) > 2 {
			score += longKeywordPoints
		} else {
			score += shortKeywordPoints
		}
	}

	if report := s.conflicts.Detect(query, content); report.HasConflict {
		score *= conflictPenalty
	}

	for _, term := range s.expander.Expand(query) {
		if strings.Contains(contentLower, strings.ToLower(term)) {
			score += expansionPoints
		}
	}

	score += densityPoints * float64(densityHits(contentLower, keywords))

	return score * qualityMultiplier(content, matchCount, len(keywords))
}

// ScoreMatch scores a ranked match by its content.
func (s *Scorer) ScoreMatch(m domsearch.Match, query string) float64 {
	return s.Score(m.Content, query)
}

// densityHits counts content tokens containing at least one query keyword.
func densityHits(contentLower string, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, token := range tokenize(contentLower) {
		for _, kw := range keywords {
			if strings.Contains(token, kw) {
				hits++
				break
			}
		}
	}
	return hits
}

// qualityMultiplier discounts thin content and weak keyword coverage.
func qualityMultiplier(content string, matchCount, keywordCount int) float64 {
	quality := 1.0

	runes := utf8.RuneCountInString(content)
	if runes < thinContentRunes {
		quality *= thinContentQuality
	} else if runes < shortContentRunes {
		quality *= shortContentQuality
	}

	if matchCount == 0 {
		quality *= noMatchQuality
	}
	if keywordCount > 0 && float64(matchCount) < partialMatchThreshold*float64(keywordCount) {
		quality *= partialMatchQuality
	}

	return quality
}
