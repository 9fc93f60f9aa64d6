package collection

import (
	"context"

	domcol "github.com/sydlabs/noteseek/internal/domain/collection"
)

// Repository defines the storage contract for collections.
type Repository interface {
	Ensure(ctx context.Context, col domcol.Collection) (created bool, err error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	Drop(ctx context.Context, name string) error
}

// NoteCounter counts notes in the active collection.
type NoteCounter interface {
	Count(ctx context.Context) (int, error)
}
