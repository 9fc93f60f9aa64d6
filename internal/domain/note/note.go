package note

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	// MaxTitleSize is the maximum note title size in bytes.
	MaxTitleSize = 1024
	// MaxContentSize is the maximum note content size in bytes.
	MaxContentSize = 65536 // 64KB
	// MaxURLSize is the maximum note URL size in bytes.
	MaxURLSize = 2048
)

// Note is the note aggregate (immutable value object). A note is a short
// social post: a title, free-form content and a link back to the source.
type Note struct {
	id        string
	title     string
	content   string
	url       string
	createdAt int64
}

// New validates and creates a Note.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. At least one of title/content non-empty.
func New(id, title, content, url string) (Note, error) {
	if id == "" {
		return Note{}, fmt.Errorf("note ID is required")
	}
	if len(id) > 256 {
		return Note{}, fmt.Errorf("note ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Note{}, fmt.Errorf("note ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return Note{}, fmt.Errorf("note needs a title or content")
	}
	if len(title) > MaxTitleSize {
		return Note{}, fmt.Errorf("title too large (max %d bytes)", MaxTitleSize)
	}
	if len(content) > MaxContentSize {
		return Note{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if len(url) > MaxURLSize {
		return Note{}, fmt.Errorf("url too large (max %d bytes)", MaxURLSize)
	}

	return Note{id: id, title: title, content: content, url: url}, nil
}

// Reconstruct creates a Note without validation (storage hydration).
func Reconstruct(id, title, content, url string, createdAt int64) Note {
	return Note{id: id, title: title, content: content, url: url, createdAt: createdAt}
}

// ID returns the note identifier.
func (n *Note) ID() string { return n.id }

// Title returns the note title.
func (n *Note) Title() string { return n.title }

// Content returns the note body text.
func (n *Note) Content() string { return n.content }

// URL returns the link back to the source post.
func (n *Note) URL() string { return n.url }

// CreatedAt returns the unix timestamp the note was first stored.
func (n *Note) CreatedAt() int64 { return n.createdAt }

// WithCreatedAt returns a copy with the given creation timestamp.
func (n *Note) WithCreatedAt(ts int64) Note {
	return Note{id: n.id, title: n.title, content: n.content, url: n.url, createdAt: ts}
}

// EmbeddingText returns the text that gets vectorized: title and content
// joined with a single space.
func (n *Note) EmbeddingText() string {
	return strings.TrimSpace(n.title + " " + n.content)
}
