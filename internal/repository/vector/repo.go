package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/sydlabs/noteseek/internal/db"
	"github.com/sydlabs/noteseek/internal/domain"
	"github.com/sydlabs/noteseek/internal/domain/search"
)

// store is the consumer interface for vector retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository over a vector index.
type Repo struct {
	store      store
	collection string
}

// New creates a vector retrieval repository bound to a collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// SearchKNN performs a KNN (vector similarity) search and maps hits to candidates.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int) ([]search.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(r.collection),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"note_id", "title", "content", "url", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}

	return parseCandidates(sr, r.collection), nil
}

func parseCandidates(sr *db.SearchResult, collection string) []search.Candidate {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := keyPrefix(collection)
	candidates := make([]search.Candidate, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		c := search.Candidate{
			ID:          id,
			NoteID:      entry.Fields["note_id"],
			Title:       entry.Fields["title"],
			Content:     entry.Fields["content"],
			URL:         entry.Fields["url"],
			VectorScore: entry.Score,
		}
		if c.NoteID == "" {
			c.NoteID = id
		}
		candidates = append(candidates, c)
	}

	return candidates
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}

func keyPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
}
