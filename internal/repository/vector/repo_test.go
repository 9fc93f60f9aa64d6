package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/sydlabs/noteseek/internal/db"
)

type mockStore struct {
	result *db.SearchResult
	err    error

	called    bool
	lastQuery *db.KNNQuery
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.called = true
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestRepo_SearchKNN(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{
		Total: 2,
		Entries: []db.SearchEntry{
			{
				Key:   "noteseek:notes:n1",
				Score: 0.92,
				Fields: map[string]string{
					"note_id": "n1",
					"title":   "悉尼咖啡店推荐",
					"content": "这家咖啡店的拿铁很好喝",
					"url":     "https://example.com/n1",
				},
			},
			{
				Key:   "noteseek:notes:n2",
				Score: 0.81,
				Fields: map[string]string{
					"title":   "美食攻略",
					"content": "本地美食合集",
				},
			},
		},
	}}
	repo := New(store, "notes")

	candidates, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2}, 10)
	if err != nil {
		t.Fatalf("SearchKNN() error = %v", err)
	}

	if store.lastQuery.IndexName != "noteseek:notes:idx" {
		t.Errorf("index = %q, want noteseek:notes:idx", store.lastQuery.IndexName)
	}
	if store.lastQuery.K != 10 {
		t.Errorf("k = %d, want 10", store.lastQuery.K)
	}

	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	first := candidates[0]
	if first.ID != "n1" || first.NoteID != "n1" {
		t.Errorf("first id = %q/%q, want n1/n1", first.ID, first.NoteID)
	}
	if first.Title != "悉尼咖啡店推荐" {
		t.Errorf("first title = %q", first.Title)
	}
	if first.VectorScore != 0.92 {
		t.Errorf("first score = %v, want 0.92", first.VectorScore)
	}

	// note_id falls back to the key-derived ID when the field is absent.
	if candidates[1].NoteID != "n2" {
		t.Errorf("second note_id = %q, want n2", candidates[1].NoteID)
	}
}

func TestRepo_SearchKNNEmpty(t *testing.T) {
	store := &mockStore{result: &db.SearchResult{}}
	repo := New(store, "notes")

	candidates, err := repo.SearchKNN(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("SearchKNN() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(candidates))
	}
}

func TestRepo_SearchKNNError(t *testing.T) {
	storeErr := errors.New("index missing")
	store := &mockStore{err: storeErr}
	repo := New(store, "notes")

	if _, err := repo.SearchKNN(context.Background(), []float32{0.1}, 5); !errors.Is(err, storeErr) {
		t.Errorf("SearchKNN() error = %v, want wrapped %v", err, storeErr)
	}
}
