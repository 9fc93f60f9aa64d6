package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/sydlabs/noteseek/internal/db"
	"github.com/sydlabs/noteseek/internal/domain"
	domcol "github.com/sydlabs/noteseek/internal/domain/collection"
)

type mockStore struct {
	exists       bool
	existsErr    error
	hsetErr      error
	hgetFields   map[string]string
	hgetErr      error
	delErr       error
	createErr    error
	dropErr      error
	idxExists    bool
	idxExistsErr error

	hsetKey    string
	hsetFields map[string]string
	delKey     string
	createdDef *db.IndexDefinition
	droppedIdx string
	delCalled  bool
	hsetCalls  int
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hsetCalls++
	m.hsetKey = key
	m.hsetFields = fields
	return m.hsetErr
}

func (m *mockStore) HGetAll(_ context.Context, _ string) (map[string]string, error) {
	if m.hgetErr != nil {
		return nil, m.hgetErr
	}
	return m.hgetFields, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	m.delCalled = true
	m.delKey = key
	return m.delErr
}

func (m *mockStore) Exists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createdDef = def
	return m.createErr
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.droppedIdx = name
	return m.dropErr
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.idxExists, m.idxExistsErr
}

func mustCollection(t *testing.T, name string, dim int) domcol.Collection {
	t.Helper()
	col, err := domcol.New(name, dim)
	if err != nil {
		t.Fatalf("New collection: %v", err)
	}
	return col
}

func TestRepo_EnsureCreates(t *testing.T) {
	store := &mockStore{exists: false}
	repo := New(store)
	col := mustCollection(t, "notes", 1024)

	created, err := repo.Ensure(context.Background(), col)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
	if store.hsetKey != "noteseek:collection:notes" {
		t.Errorf("meta key = %q", store.hsetKey)
	}
	if store.hsetFields["vector_dim"] != "1024" {
		t.Errorf("vector_dim = %q", store.hsetFields["vector_dim"])
	}

	def := store.createdDef
	if def == nil {
		t.Fatal("CreateIndex not called")
	}
	if def.Name != "noteseek:notes:idx" {
		t.Errorf("index name = %q", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "noteseek:notes:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}
	if len(def.Fields) != 5 {
		t.Fatalf("field count = %d, want 5", len(def.Fields))
	}
	vec := def.Fields[4]
	if vec.Name != "__vector" || vec.Type != db.IndexFieldVector {
		t.Errorf("vector field = %+v", vec)
	}
	if vec.VectorDim != 1024 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("vector params = dim %d distance %s", vec.VectorDim, vec.VectorDistance)
	}
	if vec.VectorM != 32 || vec.VectorEFConstruct != 400 {
		t.Errorf("hnsw params = M %d EF %d", vec.VectorM, vec.VectorEFConstruct)
	}
}

func TestRepo_EnsureIdempotent(t *testing.T) {
	store := &mockStore{exists: true}
	repo := New(store)
	col := mustCollection(t, "notes", 1024)

	created, err := repo.Ensure(context.Background(), col)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if created {
		t.Error("created = true for existing collection")
	}
	if store.hsetCalls != 0 || store.createdDef != nil {
		t.Error("writes performed for existing collection")
	}
}

func TestRepo_EnsureRollsBackOnIndexError(t *testing.T) {
	createErr := errors.New("ft.create failed")
	store := &mockStore{createErr: createErr}
	repo := New(store)
	col := mustCollection(t, "notes", 1024)

	_, err := repo.Ensure(context.Background(), col)
	if !errors.Is(err, createErr) {
		t.Fatalf("Ensure() error = %v, want wrapped %v", err, createErr)
	}
	if !store.delCalled || store.delKey != "noteseek:collection:notes" {
		t.Error("metadata not rolled back after FT.CREATE failure")
	}
}

func TestRepo_EnsureIndexAlreadyExists(t *testing.T) {
	store := &mockStore{createErr: db.ErrIndexExists}
	repo := New(store)
	col := mustCollection(t, "notes", 1024)

	created, err := repo.Ensure(context.Background(), col)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if created {
		t.Error("created = true when index already existed")
	}
	if store.delCalled {
		t.Error("metadata rolled back for pre-existing index")
	}
}

func TestRepo_EnsureCustomHNSW(t *testing.T) {
	store := &mockStore{}
	repo := New(store).WithHNSW(HNSWConfig{M: 16, EFConstruct: 200})
	col := mustCollection(t, "notes", 512)

	if _, err := repo.Ensure(context.Background(), col); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	vec := store.createdDef.Fields[4]
	if vec.VectorM != 16 || vec.VectorEFConstruct != 200 {
		t.Errorf("hnsw params = M %d EF %d, want 16/200", vec.VectorM, vec.VectorEFConstruct)
	}
}

func TestRepo_Get(t *testing.T) {
	store := &mockStore{hgetFields: map[string]string{
		"name":       "notes",
		"vector_dim": "1024",
		"created_at": "1725000000000",
	}}
	repo := New(store)

	col, err := repo.Get(context.Background(), "notes")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if col.Name() != "notes" || col.VectorDim() != 1024 {
		t.Errorf("collection = %q/%d", col.Name(), col.VectorDim())
	}
	if col.CreatedAt() != 1725000000000 {
		t.Errorf("created_at = %d", col.CreatedAt())
	}
}

func TestRepo_GetNotFound(t *testing.T) {
	store := &mockStore{hgetFields: map[string]string{}}
	repo := New(store)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRepo_Drop(t *testing.T) {
	store := &mockStore{
		hgetFields: map[string]string{"name": "notes"},
		idxExists:  true,
	}
	repo := New(store)

	if err := repo.Drop(context.Background(), "notes"); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if store.delKey != "noteseek:collection:notes" {
		t.Errorf("del key = %q", store.delKey)
	}
	if store.droppedIdx != "noteseek:notes:idx" {
		t.Errorf("dropped index = %q", store.droppedIdx)
	}
}

func TestRepo_DropNotFound(t *testing.T) {
	store := &mockStore{hgetFields: map[string]string{}}
	repo := New(store)

	if err := repo.Drop(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Drop() error = %v, want ErrNotFound", err)
	}
}

func TestRepo_DropRollsBackOnIndexError(t *testing.T) {
	dropErr := errors.New("ft.dropindex failed")
	store := &mockStore{
		hgetFields: map[string]string{"name": "notes", "vector_dim": "1024"},
		idxExists:  true,
		dropErr:    dropErr,
	}
	repo := New(store)

	err := repo.Drop(context.Background(), "notes")
	if !errors.Is(err, dropErr) {
		t.Fatalf("Drop() error = %v, want wrapped %v", err, dropErr)
	}
	if store.hsetCalls != 1 || store.hsetFields["name"] != "notes" {
		t.Error("metadata not restored after FT.DROPINDEX failure")
	}
}

func TestRepo_DropWithoutIndex(t *testing.T) {
	store := &mockStore{
		hgetFields: map[string]string{"name": "notes"},
		idxExists:  false,
	}
	repo := New(store)

	if err := repo.Drop(context.Background(), "notes"); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if store.droppedIdx != "" {
		t.Error("DropIndex called for missing index")
	}
}
