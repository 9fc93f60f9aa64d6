package note

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sydlabs/noteseek/internal/db"
	"github.com/sydlabs/noteseek/internal/domain"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
)

// store is the consumer interface for note persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

var listFields = []string{"note_id", "title", "content", "url", "created_at"}

// Repo implements usecase/note.Repository.
type Repo struct {
	store      store
	collection string
}

// New creates a note repository bound to a collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// Upsert writes a note with its embedding vector. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, n domnote.Note, vector []float32) (bool, error) {
	key := noteKey(r.collection, n.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, noteFields(n, vector)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertBatch writes multiple notes in a single round-trip.
// notes and vectors must have equal length.
func (r *Repo) UpsertBatch(ctx context.Context, notes []domnote.Note, vectors [][]float32) error {
	if len(notes) != len(vectors) {
		return fmt.Errorf("notes/vectors length mismatch: %d != %d", len(notes), len(vectors))
	}
	if len(notes) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(notes))
	for i, n := range notes {
		items = append(items, db.HashSetItem{
			Key:    noteKey(r.collection, n.ID()),
			Fields: noteFields(n, vectors[i]),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi: %w", err)
	}
	return nil
}

// Get returns a note by ID.
func (r *Repo) Get(ctx context.Context, id string) (domnote.Note, error) {
	key := noteKey(r.collection, id)

	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return domnote.Note{}, domain.ErrNoteNotFound
	}

	return reconstructNote(id, fields), nil
}

// List returns notes with offset pagination via FT.SEARCH.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domnote.Note, int, error) {
	if limit <= 0 {
		limit = 20
	}

	result, err := r.store.SearchList(ctx, indexName(r.collection), "*", offset, limit, listFields)
	if err != nil {
		return nil, 0, fmt.Errorf("search list %s: %w", r.collection, err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, r.collection)
	notes := make([]domnote.Note, 0, len(result.Entries))
	for _, entry := range result.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		notes = append(notes, reconstructNote(id, entry.Fields))
	}

	return notes, result.Total, nil
}

// Count returns the number of notes in the collection.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(r.collection), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.collection, err)
	}
	return n, nil
}

// Delete removes a note.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := noteKey(r.collection, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNoteNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func noteKey(collection, id string) string {
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, collection, id)
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}

func noteFields(n domnote.Note, vector []float32) map[string]string {
	return map[string]string{
		"note_id":    n.ID(),
		"title":      n.Title(),
		"content":    n.Content(),
		"url":        n.URL(),
		"created_at": strconv.FormatInt(n.CreatedAt(), 10),
		"__vector":   vectorToBytes(vector),
	}
}

func reconstructNote(id string, fields map[string]string) domnote.Note {
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return domnote.Reconstruct(id, fields["title"], fields["content"], fields["url"], createdAt)
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
