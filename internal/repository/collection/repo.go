package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sydlabs/noteseek/internal/db"
	"github.com/sydlabs/noteseek/internal/domain"
	domcol "github.com/sydlabs/noteseek/internal/domain/collection"
)

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/collection.Repository.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a collection repository.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates the collection if it does not exist yet: HSET metadata
// then FT.CREATE index. On FT.CREATE failure, rolls back the HSET via DEL.
// Existing collections are left untouched.
func (r *Repo) Ensure(ctx context.Context, col domcol.Collection) (bool, error) {
	name := col.Name()
	key := metaKey(name)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return false, nil
	}

	indexDef := buildNotesIndex(name, col.VectorDim(), r.hnsw)

	if err := r.store.HSet(ctx, key, collectionToHash(col)); err != nil {
		return false, fmt.Errorf("hset collection %s: %w", name, err)
	}

	// FT.CREATE — rollback HSET on error
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		cleanupErr := r.store.Del(ctx, key)
		return false, errors.Join(err, cleanupErr)
	}

	return true, nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, metaKey(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return collectionFromHash(m), nil
}

// Drop removes a collection: backup metadata, DEL hash, FT.DROPINDEX
// (rollback HSET on error). Note hashes expire with the index prefix scan
// left to operational tooling.
func (r *Repo) Drop(ctx context.Context, name string) error {
	key := metaKey(name)

	metaBackup, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrNotFound
	}

	idxName := indexName(name)
	idxExists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}

	if !idxExists {
		return nil
	}

	// FT.DROPINDEX — rollback HSET on error
	if err := r.store.DropIndex(ctx, idxName); err != nil {
		cleanupErr := r.store.HSet(ctx, key, metaBackup)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// buildNotesIndex defines the fixed note schema for a collection index.
func buildNotesIndex(name string, vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	return db.NewIndex(indexName(name)).
		Prefix(collectionPrefix(name)).
		Tag("note_id").
		Text("title").
		Text("content").
		Tag("url").
		VectorHNSW("__vector", vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		MustBuild()
}

func collectionToHash(col domcol.Collection) map[string]string {
	return map[string]string{
		"name":       col.Name(),
		"vector_dim": strconv.Itoa(col.VectorDim()),
		"created_at": strconv.FormatInt(col.CreatedAt(), 10),
	}
}

func collectionFromHash(m map[string]string) domcol.Collection {
	vectorDim, _ := strconv.Atoi(m["vector_dim"])
	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	return domcol.Reconstruct(m["name"], vectorDim, createdAt)
}

// Redis key patterns: noteseek:collection:{name}, noteseek:{name}:idx, noteseek:{name}:

func metaKey(name string) string {
	return fmt.Sprintf("%scollection:%s", domain.KeyPrefix, name)
}

func indexName(name string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, name)
}

func collectionPrefix(name string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, name)
}
