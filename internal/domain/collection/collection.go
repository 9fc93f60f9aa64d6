package collection

import (
	"fmt"
	"regexp"
)

// MaxNameLength limits collection names.
const MaxNameLength = 64

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Collection is an immutable note collection descriptor.
type Collection struct {
	name      string
	vectorDim int
	createdAt int64 // unix millis
}

// New validates inputs and creates a Collection.
func New(name string, vectorDim int) (Collection, error) {
	if name == "" {
		return Collection{}, fmt.Errorf("collection name is required")
	}
	if len(name) > MaxNameLength {
		return Collection{}, fmt.Errorf("collection name exceeds %d characters", MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return Collection{}, fmt.Errorf("collection name %q contains invalid characters", name)
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive, got %d", vectorDim)
	}
	return Collection{name: name, vectorDim: vectorDim}, nil
}

// Reconstruct rebuilds a Collection from storage without validation.
func Reconstruct(name string, vectorDim int, createdAt int64) Collection {
	return Collection{name: name, vectorDim: vectorDim, createdAt: createdAt}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// VectorDim returns the embedding dimensionality.
func (c *Collection) VectorDim() int { return c.vectorDim }

// CreatedAt returns the creation timestamp in unix millis.
func (c *Collection) CreatedAt() int64 { return c.createdAt }

// WithCreatedAt returns a copy with the creation timestamp set.
func (c *Collection) WithCreatedAt(ts int64) Collection {
	copied := *c
	copied.createdAt = ts
	return copied
}
