// Package annotations defines how object lists are persisted per document.
//
// A document is identified by its path. Each save replaces the whole list,
// matching the replace-the-list model of the labeling view; there is no
// per-span update.
package annotations

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/spanmark/internal/document"
)

// Document is the stored metadata of an annotated text.
type Document struct {
	GUID string
	Path string
	// Version is the content hash of the text the spans were made against.
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is a document together with its object list.
type Record struct {
	Document
	Objects []document.Span
}

// Repository persists object lists.
// Implementations may use SQLite or in-memory storage.
type Repository interface {
	// Load returns the stored list for path.
	// Returns DocumentNotFoundError if nothing was saved for path.
	Load(ctx context.Context, path string) (Record, error)

	// Save replaces the stored list for path. The document record is created
	// on first save and keeps its GUID afterwards.
	Save(ctx context.Context, path, version string, objects []document.Span) (Record, error)

	// List returns all annotated documents ordered by path.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document and its spans.
	// Returns DocumentNotFoundError if nothing was saved for path.
	Delete(ctx context.Context, path string) error

	// Close releases any resources held by the repository.
	Close() error
}

// DocumentNotFoundError is returned when no record exists for a path.
type DocumentNotFoundError struct {
	Path string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("no annotations for %s", e.Path)
}
