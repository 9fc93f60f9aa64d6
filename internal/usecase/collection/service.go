package collection

import (
	"context"
	"fmt"
	"time"

	domcol "github.com/sydlabs/noteseek/internal/domain/collection"
)

// Info describes a collection with its note count.
type Info struct {
	Name      string
	VectorDim int
	CreatedAt int64
	NoteCount int
}

// Service handles collection lifecycle.
type Service struct {
	repo  Repository
	notes NoteCounter
	now   func() time.Time
}

// New creates a collection service. notes can be nil (count reported as 0).
func New(repo Repository, notes NoteCounter) *Service {
	return &Service{repo: repo, notes: notes, now: time.Now}
}

// Ensure creates the collection and its index if missing.
// Returns true when the collection was created on this call.
func (s *Service) Ensure(ctx context.Context, name string, vectorDim int) (bool, error) {
	col, err := domcol.New(name, vectorDim)
	if err != nil {
		return false, fmt.Errorf("validate collection: %w", err)
	}
	col = col.WithCreatedAt(s.now().UnixMilli())

	created, err := s.repo.Ensure(ctx, col)
	if err != nil {
		return false, fmt.Errorf("ensure collection: %w", err)
	}
	return created, nil
}

// Describe returns collection metadata with the current note count.
func (s *Service) Describe(ctx context.Context, name string) (Info, error) {
	col, err := s.repo.Get(ctx, name)
	if err != nil {
		return Info{}, fmt.Errorf("get collection: %w", err)
	}

	info := Info{
		Name:      col.Name(),
		VectorDim: col.VectorDim(),
		CreatedAt: col.CreatedAt(),
	}

	if s.notes != nil {
		count, err := s.notes.Count(ctx)
		if err != nil {
			return Info{}, fmt.Errorf("count notes: %w", err)
		}
		info.NoteCount = count
	}

	return info, nil
}

// Drop removes the collection and its index.
func (s *Service) Drop(ctx context.Context, name string) error {
	if err := s.repo.Drop(ctx, name); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}
