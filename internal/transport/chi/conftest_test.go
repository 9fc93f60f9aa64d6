package chi

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/domain"
	domcol "github.com/sydlabs/noteseek/internal/domain/collection"
	"github.com/sydlabs/noteseek/internal/domain/keyword"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
	collectionuc "github.com/sydlabs/noteseek/internal/usecase/collection"
	healthuc "github.com/sydlabs/noteseek/internal/usecase/health"
	noteuc "github.com/sydlabs/noteseek/internal/usecase/note"
	searchuc "github.com/sydlabs/noteseek/internal/usecase/search"
	usageuc "github.com/sydlabs/noteseek/internal/usecase/usage"
)

// --- In-memory fakes wired into real use case services ---

type fakeSearchRepo struct {
	candidates []domsearch.Candidate
	err        error
}

func (f *fakeSearchRepo) SearchKNN(_ context.Context, _ []float32, _ int) ([]domsearch.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type fakeEmbedder struct {
	vec    []float32
	tokens int
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec, TotalTokens: f.tokens}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range embeddings {
		embeddings[i] = f.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: f.tokens * len(texts)}, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (domain.GenerationResult, error) {
	if f.err != nil {
		return domain.GenerationResult{}, f.err
	}
	return domain.GenerationResult{Text: f.text, TotalTokens: 10}, nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[string]domnote.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]domnote.Note)}
}

func (f *fakeNoteRepo) Upsert(_ context.Context, n domnote.Note, _ []float32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.notes[n.ID()]
	f.notes[n.ID()] = n
	return !exists, nil
}

func (f *fakeNoteRepo) UpsertBatch(_ context.Context, notes []domnote.Note, _ [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range notes {
		f.notes[n.ID()] = n
	}
	return nil
}

func (f *fakeNoteRepo) Get(_ context.Context, id string) (domnote.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.notes[id]; ok {
		return n, nil
	}
	return domnote.Note{}, domain.ErrNoteNotFound
}

func (f *fakeNoteRepo) List(_ context.Context, offset, limit int) ([]domnote.Note, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domnote.Note, 0, len(f.notes))
	for _, n := range f.notes {
		all = append(all, n)
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeNoteRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notes), nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeCollRepo struct {
	mu      sync.Mutex
	col     *domcol.Collection
	dropErr error
}

func newFakeCollRepo() *fakeCollRepo {
	return &fakeCollRepo{}
}

func (f *fakeCollRepo) Ensure(_ context.Context, col domcol.Collection) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.col != nil {
		return false, nil
	}
	f.col = &col
	return true, nil
}

func (f *fakeCollRepo) Get(_ context.Context, _ string) (domcol.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.col == nil {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return *f.col, nil
}

func (f *fakeCollRepo) Drop(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropErr != nil {
		return f.dropErr
	}
	if f.col == nil {
		return domain.ErrNotFound
	}
	f.col = nil
	return nil
}

type fakeUsageStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeUsageStore() *fakeUsageStore {
	return &fakeUsageStore{counts: make(map[string]int64)}
}

func (f *fakeUsageStore) Incr(_ context.Context, kind string, _ time.Time, tokens int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[kind] += tokens
	return nil
}

func (f *fakeUsageStore) Get(_ context.Context, kind string, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[kind], nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func seedCollection(t *testing.T, env *testEnv, name string, dim int) {
	t.Helper()
	col := domcol.Reconstruct(name, dim, time.Now().UnixMilli())
	env.collRepo.col = &col
}

// --- Test server assembly ---

type testEnv struct {
	server    *httptest.Server
	noteRepo  *fakeNoteRepo
	search    *fakeSearchRepo
	embedder  *fakeEmbedder
	generator *fakeGenerator
	catalog   *keyword.Catalog
	pinger    *fakePinger
	usage     *fakeUsageStore
	collRepo  *fakeCollRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		noteRepo:  newFakeNoteRepo(),
		search:    &fakeSearchRepo{},
		embedder:  &fakeEmbedder{vec: []float32{0.1, 0.2}},
		generator: &fakeGenerator{text: "生成的总结"},
		catalog:   keyword.NewWithDefaults(),
		pinger:    &fakePinger{},
		usage:     newFakeUsageStore(),
		collRepo:  newFakeCollRepo(),
	}

	logger := zap.NewNop()

	searchSvc := searchuc.New(env.search, env.embedder, env.catalog, env.generator, logger)
	noteSvc := noteuc.New(env.noteRepo, env.embedder, 0)
	collSvc := collectionuc.New(env.collRepo, env.noteRepo)
	usageSvc := usageuc.New(env.usage, logger)
	healthSvc := healthuc.New(env.pinger, nil)

	srv := NewServer(searchSvc, noteSvc, collSvc, usageSvc, healthSvc, env.catalog, "notes", logger)

	r := chi.NewRouter()
	srv.Register(r)

	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}
