package note

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sydlabs/noteseek/internal/domain"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
)

// --- Mocks ---

type mockRepo struct {
	existing    map[string]domnote.Note
	upsertErr   error
	getErr      error
	listNotes   []domnote.Note
	listTotal   int
	listErr     error
	count       int
	countErr    error
	deleteErr   error
	batchErr    error
	upsertNote  domnote.Note
	upsertVec   []float32
	batchNotes  []domnote.Note
	batchVecs   [][]float32
	deletedID   string
	listOffset  int
	listLimit   int
	upsertCalls int
}

func (m *mockRepo) Upsert(_ context.Context, n domnote.Note, vector []float32) (bool, error) {
	m.upsertCalls++
	m.upsertNote = n
	m.upsertVec = vector
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	_, exists := m.existing[n.ID()]
	return !exists, nil
}

func (m *mockRepo) UpsertBatch(_ context.Context, notes []domnote.Note, vectors [][]float32) error {
	m.batchNotes = notes
	m.batchVecs = vectors
	return m.batchErr
}

func (m *mockRepo) Get(_ context.Context, id string) (domnote.Note, error) {
	if m.getErr != nil {
		return domnote.Note{}, m.getErr
	}
	if n, ok := m.existing[id]; ok {
		return n, nil
	}
	return domnote.Note{}, domain.ErrNoteNotFound
}

func (m *mockRepo) List(_ context.Context, offset, limit int) ([]domnote.Note, int, error) {
	m.listOffset = offset
	m.listLimit = limit
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listNotes, m.listTotal, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.deleteErr
}

type mockEmbedder struct {
	vec      []float32
	tokens   int
	err      error
	batchErr error
	texts    []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.texts = append(m.texts, texts...)
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i := range embeddings {
		embeddings[i] = m.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: m.tokens * len(texts)}, nil
}

func mustNote(t *testing.T, id, title, content string) domnote.Note {
	t.Helper()
	n, err := domnote.New(id, title, content, "")
	if err != nil {
		t.Fatalf("New note: %v", err)
	}
	return n
}

func newService(repo *mockRepo, emb *mockEmbedder, dim int) *Service {
	svc := New(repo, emb, dim)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// --- Tests ---

func TestUpsert_Creates(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1, 0.2}, tokens: 8}
	svc := newService(repo, emb, 2)

	n := mustNote(t, "n1", "悉尼咖啡", "好喝的拿铁")
	stored, created, err := svc.Upsert(context.Background(), n)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
	if emb.texts[0] != "悉尼咖啡 好喝的拿铁" {
		t.Errorf("embedded text = %q", emb.texts[0])
	}
	if stored.CreatedAt() == 0 {
		t.Error("created_at not stamped")
	}
	if len(repo.upsertVec) != 2 {
		t.Errorf("vector len = %d", len(repo.upsertVec))
	}
}

func TestUpsert_PreservesCreatedAt(t *testing.T) {
	orig := domnote.Reconstruct("n1", "old", "content", "", 1700000000000)
	repo := &mockRepo{existing: map[string]domnote.Note{"n1": orig}}
	emb := &mockEmbedder{vec: []float32{0.1}}
	svc := newService(repo, emb, 0)

	stored, created, err := svc.Upsert(context.Background(), mustNote(t, "n1", "new", "content"))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created {
		t.Error("created = true for existing note")
	}
	if stored.CreatedAt() != 1700000000000 {
		t.Errorf("created_at = %d, want preserved 1700000000000", stored.CreatedAt())
	}
}

func TestUpsert_DimMismatch(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newService(repo, emb, 2)

	_, _, err := svc.Upsert(context.Background(), mustNote(t, "n1", "t", "c"))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("Upsert() error = %v, want ErrVectorDimMismatch", err)
	}
	if repo.upsertCalls != 0 {
		t.Error("repo written despite dimension mismatch")
	}
}

func TestUpsert_EmbedError(t *testing.T) {
	embErr := errors.New("provider down")
	svc := newService(&mockRepo{}, &mockEmbedder{err: embErr}, 0)

	if _, _, err := svc.Upsert(context.Background(), mustNote(t, "n1", "t", "c")); !errors.Is(err, embErr) {
		t.Errorf("Upsert() error = %v, want wrapped %v", err, embErr)
	}
}

func TestUpsert_RecordsUsage(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1}, tokens: 12}
	svc := newService(repo, emb, 0)

	ctx, usage := domain.NewContextWithUsage(context.Background())

	if _, _, err := svc.Upsert(ctx, mustNote(t, "n1", "t", "c")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if usage.TotalTokens != 12 {
		t.Errorf("usage tokens = %d, want 12", usage.TotalTokens)
	}
}

func TestUpsertBatch(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{vec: []float32{0.1}, tokens: 2}
	svc := newService(repo, emb, 1)

	notes := []domnote.Note{
		mustNote(t, "n1", "a", "x"),
		mustNote(t, "n2", "b", "y"),
	}
	if err := svc.UpsertBatch(context.Background(), notes); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if len(repo.batchNotes) != 2 || len(repo.batchVecs) != 2 {
		t.Fatalf("batch sizes = %d/%d", len(repo.batchNotes), len(repo.batchVecs))
	}
	if repo.batchNotes[0].CreatedAt() == 0 {
		t.Error("batch notes not timestamped")
	}
}

func TestUpsertBatch_Empty(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo, &mockEmbedder{}, 0)

	if err := svc.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}
	if repo.batchNotes != nil {
		t.Error("repo called for empty batch")
	}
}

func TestUpsertBatch_TooLarge(t *testing.T) {
	svc := newService(&mockRepo{}, &mockEmbedder{vec: []float32{0.1}}, 0)

	notes := make([]domnote.Note, MaxBatchSize+1)
	for i := range notes {
		notes[i] = domnote.Reconstruct("n", "t", "c", "", 0)
	}

	if err := svc.UpsertBatch(context.Background(), notes); !errors.Is(err, domain.ErrInvalidNote) {
		t.Errorf("UpsertBatch() error = %v, want ErrInvalidNote", err)
	}
}

func TestList_ClampsPagination(t *testing.T) {
	repo := &mockRepo{listTotal: 5}
	svc := newService(repo, &mockEmbedder{}, 0)

	if _, _, err := svc.List(context.Background(), -3, 0); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listOffset != 0 || repo.listLimit != 20 {
		t.Errorf("pagination = %d/%d, want 0/20", repo.listOffset, repo.listLimit)
	}

	if _, _, err := svc.List(context.Background(), 0, 1000); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listLimit != 100 {
		t.Errorf("limit = %d, want clamped 100", repo.listLimit)
	}
}

func TestGetDeleteCount(t *testing.T) {
	orig := domnote.Reconstruct("n1", "t", "c", "", 1)
	repo := &mockRepo{existing: map[string]domnote.Note{"n1": orig}, count: 7}
	svc := newService(repo, &mockEmbedder{}, 0)
	ctx := context.Background()

	n, err := svc.Get(ctx, "n1")
	if err != nil || n.ID() != "n1" {
		t.Fatalf("Get() = %v, %v", n.ID(), err)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("Get() error = %v, want ErrNoteNotFound", err)
	}

	count, err := svc.Count(ctx)
	if err != nil || count != 7 {
		t.Fatalf("Count() = %d, %v", count, err)
	}

	if err := svc.Delete(ctx, "n1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if repo.deletedID != "n1" {
		t.Errorf("deleted id = %q", repo.deletedID)
	}
}
