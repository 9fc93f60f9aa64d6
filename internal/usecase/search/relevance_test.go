package search

import (
	"math"
	"strings"
	"testing"

	"github.com/sydlabs/noteseek/internal/domain/keyword"
)

func newTestScorer() *Scorer {
	cat := keyword.NewWithDefaults()
	return NewScorer(NewExpander(cat), NewConflictDetector(cat))
}

// padding keeps content above the thin-content thresholds without adding
// keyword hits.
var padding = strings.Repeat("悉", 100)

func TestScore(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name    string
		content string
		query   string
		want    float64
	}{
		{
			name:    "empty query is neutral",
			content: "随便什么内容",
			query:   "",
			want:    1,
		},
		{
			// 美食+餐厅 match (+3+3), no conflict, expansion hits
			// 餐厅/吃/美食 (+4.5), one dense token (+0.3), full quality.
			name:    "two short keywords with expansions",
			content: padding + "美食餐厅好吃",
			query:   "美食 餐厅",
			want:    10.8,
		},
		{
			// Long keyword (+4), query itself as expansion hit (+1.5),
			// density (+0.3).
			name:    "long keyword bonus",
			content: padding + "美食攻略大全",
			query:   "美食攻略",
			want:    5.8,
		},
		{
			// Keyword hits (+6) crushed by the 旅游 theme conflict
			// (content contains 攻略), then expansion 攻略 (+1.5) and
			// density (+0.3).
			name:    "theme conflict penalty",
			content: padding + "咖啡攻略",
			query:   "咖啡 攻略",
			want:    6*conflictPenalty + 1.5 + 0.3,
		},
		{
			// Match +3, expansion 咖啡 (+1.5), density (+0.3), thin
			// content quality 0.3.
			name:    "thin content discount",
			content: "咖啡好喝",
			query:   "咖啡",
			want:    4.8 * thinContentQuality,
		},
		{
			// One of three keywords matches (+3), no expansion term hits,
			// density (+0.3), then the partial-coverage discount.
			name:    "partial match discount",
			content: padding + "咖啡",
			query:   "咖啡 烘焙 拉花",
			want:    3.3 * partialMatchQuality,
		},
		{
			name:    "no match collapses to zero",
			content: padding,
			query:   "买手店",
			want:    0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(tc.content, tc.query)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreOnThemeBeatsConflicting(t *testing.T) {
	s := newTestScorer()

	// For a shopping query, content about the query's own theme must rank
	// above dining content that trips the theme-conflict penalty.
	query := "买手店"
	onTheme := padding + "买手店精品店购物指南"
	offTheme := "Spago餐厅，意面美食，咖啡馆推荐"

	onScore := s.Score(onTheme, query)
	offScore := s.Score(offTheme, query)
	if onScore <= offScore {
		t.Errorf("Score(onTheme) = %v, Score(offTheme) = %v, want onTheme higher", onScore, offScore)
	}
}

func TestScoreZeroMatchQuality(t *testing.T) {
	s := newTestScorer()

	// 60 runes, no keyword hit: 0.7 length quality, 0.1 no-match quality,
	// 0.8 partial quality all stack on a zero base.
	content := strings.Repeat("好", 60)
	if got := s.Score(content, "买手店"); got != 0 {
		t.Errorf("Score = %v, want 0", got)
	}
}
