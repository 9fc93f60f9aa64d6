package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
	"github.com/sydlabs/noteseek/internal/logger"
)

const (
	// relevanceThreshold is the minimum score for a note to feed the
	// summary prompt.
	relevanceThreshold = 2.0
	// fallbackNoteCount keeps the summary grounded when nothing clears the
	// threshold.
	fallbackNoteCount = 3
	// maxPromptContentRunes truncates each note's content inside the prompt.
	maxPromptContentRunes = 500
)

// noResultsMessage is returned without calling the LLM.
const noResultsMessage = "没有找到相关的笔记内容，请尝试其他关键词。"

const defaultInstruction = `请基于以上笔记内容，围绕查询"%s"生成一份实用的中文总结，使用 Markdown 格式，包含以下三个部分：

### 🔍 实用建议总结
提炼笔记中最值得参考的建议。

### 📝 核心攻略内容
汇总具体的地点、做法和注意事项。

### 💡 经验分享
整理作者们的亲身体会和踩坑提醒。

只依据笔记内容作答，不要编造信息，不要使用代码块包裹输出。`

// Summarizer condenses ranked matches into a Chinese markdown summary via the
// text generation provider.
type Summarizer struct {
	scorer *Scorer
	gen    Generator
}

// NewSummarizer creates a result summarizer.
func NewSummarizer(scorer *Scorer, gen Generator) *Summarizer {
	return &Summarizer{scorer: scorer, gen: gen}
}

// Summarize filters matches by relevance, builds the prompt and calls the
// generator. customPrompt, when non-empty, replaces the default instruction.
func (s *Summarizer) Summarize(
	ctx context.Context, query string, matches []domsearch.Match, customPrompt string,
) (domain.GenerationResult, error) {
	if len(matches) == 0 {
		return domain.GenerationResult{Text: noResultsMessage}, nil
	}

	included := s.selectRelevant(ctx, query, matches)
	prompt := buildPrompt(query, included, customPrompt)

	res, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate summary: %w", err)
	}
	return res, nil
}

type scoredMatch struct {
	match     domsearch.Match
	relevance float64
}

// selectRelevant keeps matches scoring at or above the threshold; when none
// qualify, the top scorers still go in so the summary has material.
func (s *Summarizer) selectRelevant(
	ctx context.Context, query string, matches []domsearch.Match,
) []scoredMatch {
	scored := make([]scoredMatch, len(matches))
	for i, m := range matches {
		scored[i] = scoredMatch{match: m, relevance: s.scorer.ScoreMatch(m, query)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].relevance > scored[j].relevance
	})

	included := scored[:0:len(scored)]
	for _, sm := range scored {
		if sm.relevance >= relevanceThreshold {
			included = append(included, sm)
		}
	}
	if len(included) == 0 {
		n := min(fallbackNoteCount, len(scored))
		included = scored[:n]
		logger.FromContext(ctx).Debug("No matches above relevance threshold, using top scorers",
			zap.String("query", query), zap.Int("count", n))
	}
	return included
}

func buildPrompt(query string, included []scoredMatch, customPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "以下是关于\"%s\"的笔记内容：\n\n", query)

	for i, sm := range included {
		m := sm.match
		fmt.Fprintf(&b, "【笔记%d】%s\n", i+1, m.Title)
		fmt.Fprintf(&b, "%s\n", truncateRunes(m.Content, maxPromptContentRunes))
		if m.URL != "" {
			fmt.Fprintf(&b, "链接：%s\n", m.URL)
		}
		fmt.Fprintf(&b, "相关度：%.1f\n\n", sm.relevance)
	}

	if customPrompt != "" {
		b.WriteString(customPrompt)
	} else {
		fmt.Fprintf(&b, defaultInstruction, query)
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
