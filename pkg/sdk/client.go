package noteseek

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sydlabs/noteseek/internal/db"
	dbRedis "github.com/sydlabs/noteseek/internal/db/redis"
	"github.com/sydlabs/noteseek/internal/domain"
	"github.com/sydlabs/noteseek/internal/domain/keyword"
	domnote "github.com/sydlabs/noteseek/internal/domain/note"
	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
	collectionrepo "github.com/sydlabs/noteseek/internal/repository/collection"
	noterepo "github.com/sydlabs/noteseek/internal/repository/note"
	usagerepo "github.com/sydlabs/noteseek/internal/repository/usage"
	vectorrepo "github.com/sydlabs/noteseek/internal/repository/vector"
	collectionuc "github.com/sydlabs/noteseek/internal/usecase/collection"
	healthuc "github.com/sydlabs/noteseek/internal/usecase/health"
	noteuc "github.com/sydlabs/noteseek/internal/usecase/note"
	searchuc "github.com/sydlabs/noteseek/internal/usecase/search"
	usageuc "github.com/sydlabs/noteseek/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCollection       = "notes"
	defaultVectorDimensions = 1024
)

// Internal interfaces so tests can substitute fakes.
type searchUseCase interface {
	Search(ctx context.Context, req domsearch.Request) (domsearch.Result, error)
	DetectConflict(query, content string) domsearch.ConflictReport
}

type noteUseCase interface {
	Upsert(ctx context.Context, n domnote.Note) (domnote.Note, bool, error)
	UpsertBatch(ctx context.Context, notes []domnote.Note) error
	Get(ctx context.Context, id string) (domnote.Note, error)
	List(ctx context.Context, offset, limit int) ([]domnote.Note, int, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type collectionUseCase interface {
	Ensure(ctx context.Context, name string, vectorDim int) (bool, error)
	Describe(ctx context.Context, name string) (collectionuc.Info, error)
	Drop(ctx context.Context, name string) error
}

type usageUseCase interface {
	Report(ctx context.Context) (usageuc.Report, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the noteseek embedded client entry point.
type Client struct {
	store      db.Store
	searchSvc  searchUseCase
	noteSvc    noteUseCase
	collSvc    collectionUseCase
	usageSvc   usageUseCase
	healthSvc  healthUseCase
	catalog    *keyword.Catalog
	collection string
	obs        *observer
}

// New creates a noteseek Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		collection:       defaultCollection,
		vectorDimensions: defaultVectorDimensions,
		logger:           zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("noteseek: database address required (use WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("noteseek: embedder required (use WithEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("noteseek: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("noteseek: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c := wireClient(store, cfg, obs)

	if _, err := c.collSvc.Ensure(ctx, cfg.collection, cfg.vectorDimensions); err != nil {
		store.Close()
		return nil, fmt.Errorf("noteseek: ensure collection: %w", err)
	}

	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	collRepo := collectionrepo.New(store)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		collRepo = collRepo.WithHNSW(collectionrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	noteRepo := noterepo.New(store, cfg.collection)
	vectorRepo := vectorrepo.New(store, cfg.collection)
	usageStore := usagerepo.New(store, 0)

	embedder := &embedderAdapter{inner: cfg.embedder}

	var gen searchuc.Generator = noopGenerator{}
	if cfg.generator != nil {
		gen = &generatorAdapter{inner: cfg.generator}
	}

	catalog := keyword.NewWithDefaults()
	usageSvc := usageuc.New(usageStore, cfg.logger)

	return &Client{
		store:      store,
		searchSvc:  searchuc.New(vectorRepo, embedder, catalog, gen, cfg.logger),
		noteSvc:    noteuc.New(noteRepo, embedder, cfg.vectorDimensions),
		collSvc:    collectionuc.New(collRepo, noteRepo),
		usageSvc:   usageSvc,
		healthSvc:  healthuc.New(store, nil),
		catalog:    catalog,
		collection: cfg.collection,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a hybrid semantic search over the note collection.
func (c *Client) Search(ctx context.Context, req SearchRequest) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	domReq, err := domsearch.NewRequest(req.Query, req.TopK, req.WithSummary, req.CustomPrompt)
	if err != nil {
		return SearchResult{}, err
	}

	result, err := c.searchSvc.Search(ctx, domReq)
	if err != nil {
		return SearchResult{}, err
	}
	return resultFromDomain(result), nil
}

// DetectConflict reports whether content's theme conflicts with the query's.
func (c *Client) DetectConflict(query, content string) ConflictReport {
	report := c.searchSvc.DetectConflict(query, content)
	return ConflictReport{
		HasConflict:       report.HasConflict,
		QueryTheme:        report.QueryTheme,
		ConflictingThemes: report.ConflictingThemes,
	}
}

// UpsertNote validates, embeds and stores a note.
// Returns the stored note and whether it was newly created.
func (c *Client) UpsertNote(ctx context.Context, n Note) (stored Note, created bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_note", start, err) }()

	domNote, err := domnote.New(n.ID, n.Title, n.Content, n.URL)
	if err != nil {
		return Note{}, false, fmt.Errorf("%w: %s", domain.ErrInvalidNote, err.Error())
	}

	result, created, err := c.noteSvc.Upsert(ctx, domNote)
	if err != nil {
		return Note{}, false, err
	}
	return noteFromDomain(result), created, nil
}

// BatchUpsertNotes embeds and stores multiple notes in one round trip.
func (c *Client) BatchUpsertNotes(ctx context.Context, notes []Note) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("batch_upsert", start, err) }()

	domNotes := make([]domnote.Note, 0, len(notes))
	for _, n := range notes {
		domNote, err := domnote.New(n.ID, n.Title, n.Content, n.URL)
		if err != nil {
			return fmt.Errorf("%w: note %q: %s", domain.ErrInvalidNote, n.ID, err.Error())
		}
		domNotes = append(domNotes, domNote)
	}
	return c.noteSvc.UpsertBatch(ctx, domNotes)
}

// GetNote fetches a note by ID. Returns ErrNoteNotFound if missing.
func (c *Client) GetNote(ctx context.Context, id string) (n Note, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_note", start, err) }()

	result, err := c.noteSvc.Get(ctx, id)
	if err != nil {
		return Note{}, err
	}
	return noteFromDomain(result), nil
}

// ListNotes returns a page of notes and the total count.
func (c *Client) ListNotes(ctx context.Context, offset, limit int) (notes []Note, total int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_notes", start, err) }()

	result, total, err := c.noteSvc.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	notes = make([]Note, len(result))
	for i, n := range result {
		notes[i] = noteFromDomain(n)
	}
	return notes, total, nil
}

// CountNotes returns the number of notes in the collection.
func (c *Client) CountNotes(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count_notes", start, err) }()

	return c.noteSvc.Count(ctx)
}

// DeleteNote removes a note by ID. Returns ErrNoteNotFound if missing.
func (c *Client) DeleteNote(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_note", start, err) }()

	return c.noteSvc.Delete(ctx, id)
}

// DescribeCollection returns collection metadata and the note count.
func (c *Client) DescribeCollection(ctx context.Context) (info CollectionInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("describe_collection", start, err) }()

	result, err := c.collSvc.Describe(ctx, c.collection)
	if err != nil {
		return CollectionInfo{}, err
	}
	return CollectionInfo{
		Name:      result.Name,
		VectorDim: result.VectorDim,
		NoteCount: result.NoteCount,
		CreatedAt: time.UnixMilli(result.CreatedAt).UTC(),
	}, nil
}

// DropCollection removes the collection, its index and metadata.
// Note data is not bulk-deleted; recreate the collection to reuse the name.
func (c *Client) DropCollection(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("drop_collection", start, err) }()

	return c.collSvc.Drop(ctx, c.collection)
}

// Keywords returns the keyword catalog for expansion and theme administration.
func (c *Client) Keywords() *keyword.Catalog {
	return c.catalog
}

// Usage returns today's token consumption.
func (c *Client) Usage(ctx context.Context) (UsageReport, error) {
	report, err := c.usageSvc.Report(ctx)
	if err != nil {
		return UsageReport{}, err
	}
	return UsageReport{
		Day:              report.Day,
		EmbeddingTokens:  report.EmbeddingTokens,
		GenerationTokens: report.GenerationTokens,
	}, nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// embedderAdapter wraps the public Embedder to satisfy internal interfaces.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(BatchEmbedder); ok {
		r, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return domain.BatchEmbeddingResult{
			Embeddings:   r.Embeddings,
			PromptTokens: r.PromptTokens,
			TotalTokens:  r.TotalTokens,
		}, nil
	}
	return domain.BatchFallback(ctx, a, texts)
}

// generatorAdapter wraps the public Generator to satisfy internal interfaces.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	r, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{
		Text:             r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

// noopGenerator fails summary requests when no generator is configured.
type noopGenerator struct{}

func (noopGenerator) Generate(_ context.Context, _ string) (domain.GenerationResult, error) {
	return domain.GenerationResult{}, fmt.Errorf(
		"%w: generator not configured (use WithGenerator)", domain.ErrGenerationProviderError,
	)
}
