package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
	"github.com/sydlabs/noteseek/internal/domain/keyword"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

func newTestService(repo *mockRepo, embed *mockEmbedder, gen *mockGenerator) *Service {
	return New(repo, embed, keyword.NewWithDefaults(), gen, zap.NewNop())
}

func mustRequest(t *testing.T, query string, topK int, withSummary bool, customPrompt string) domsearch.Request {
	t.Helper()
	req, err := domsearch.NewRequest(query, topK, withSummary, customPrompt)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestSearch(t *testing.T) {
	repo := &mockRepo{candidates: []domsearch.Candidate{
		{ID: "n1", Title: "悉尼咖啡馆", Content: "拉花很棒", VectorScore: 0.5},
		{ID: "n2", Title: "歌剧院", Content: "景点", VectorScore: 0.8},
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}, tokens: 7}
	gen := &mockGenerator{}
	svc := newTestService(repo, embed, gen)

	res, err := svc.Search(context.Background(), mustRequest(t, "咖啡", 2, false, ""))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !embed.called || embed.text != "咖啡" {
		t.Errorf("embedder called with %q", embed.text)
	}
	if repo.lastTopK != minOverFetch {
		t.Errorf("fetch topK = %d, want %d (over-fetch floor)", repo.lastTopK, minOverFetch)
	}
	if res.Total != 2 || len(res.Matches) != 2 {
		t.Fatalf("Total = %d, matches = %d", res.Total, len(res.Matches))
	}
	// Keyword boosts lift the coffee note above the raw vector leader.
	if res.Matches[0].ID != "n1" {
		t.Errorf("top match = %s, want n1", res.Matches[0].ID)
	}
	if len(res.ExpandedTerms) == 0 || res.ExpandedTerms[0] != "咖啡" {
		t.Errorf("ExpandedTerms = %v", res.ExpandedTerms)
	}
	if res.HasSummary || res.Summary != "" {
		t.Error("plain search must not carry a summary")
	}
	if gen.called {
		t.Error("generator must not run without with_summary")
	}
}

func TestSearchOverFetch(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{0.1}}, &mockGenerator{})

	if _, err := svc.Search(context.Background(), mustRequest(t, "q1", 10, false, "")); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if repo.lastTopK != 30 {
		t.Errorf("fetch topK = %d, want 30 (3x requested)", repo.lastTopK)
	}
}

func TestSearchWithSummary(t *testing.T) {
	repo := &mockRepo{candidates: []domsearch.Candidate{
		{ID: "n1", Title: "悉尼美食", Content: padding + "美食餐厅好吃", VectorScore: 0.9},
	}}
	gen := &mockGenerator{text: "### 🔍 实用建议总结\n去这家。"}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{0.1}}, gen)

	res, err := svc.Search(context.Background(), mustRequest(t, "美食 餐厅", 0, true, ""))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.HasSummary {
		t.Fatal("expected a summary")
	}
	if res.Summary != gen.text {
		t.Errorf("Summary = %q", res.Summary)
	}
	if !gen.called {
		t.Error("generator not called")
	}
}

func TestSearchSummaryFailureDegrades(t *testing.T) {
	repo := &mockRepo{candidates: []domsearch.Candidate{
		{ID: "n1", Title: "笔记", Content: padding + "美食餐厅好吃", VectorScore: 0.9},
	}}
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{0.1}}, gen)

	res, err := svc.Search(context.Background(), mustRequest(t, "美食 餐厅", 0, true, ""))
	if err != nil {
		t.Fatalf("summary failure must not fail the search: %v", err)
	}
	if !res.HasSummary || res.Summary != summaryUnavailableMessage {
		t.Errorf("Summary = %q, want placeholder", res.Summary)
	}
	if res.Total != 1 {
		t.Errorf("Total = %d, matches must survive", res.Total)
	}
}

func TestSearchEmbedError(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{err: errors.New("quota")}, &mockGenerator{})

	if _, err := svc.Search(context.Background(), mustRequest(t, "咖啡", 0, false, "")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchRepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("store down")}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{0.1}}, &mockGenerator{})

	if _, err := svc.Search(context.Background(), mustRequest(t, "咖啡", 0, false, "")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{}, &mockGenerator{})

	_, err := svc.Search(context.Background(), domsearch.Request{Query: "   ", TopK: 5})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestSearchRecordsUsage(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockEmbedder{vec: []float32{0.1}, tokens: 7}, &mockGenerator{})

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := svc.Search(ctx, mustRequest(t, "咖啡", 0, false, "")); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if usage.TotalTokens != 7 || !usage.Used {
		t.Errorf("usage = %+v, want 7 tokens recorded", usage)
	}
}

func TestDetectConflict(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{}, &mockGenerator{})

	report := svc.DetectConflict("买手店 推荐", "这家店的拉花很棒")
	if !report.HasConflict || report.QueryTheme != "买手店" {
		t.Errorf("report = %+v", report)
	}
}
