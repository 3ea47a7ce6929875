package repository

import (
	"context"

	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
)

// ListParams selects one page of documents
type ListParams struct {
	// Cursor is an opaque token from a previous page; empty starts at the top
	Cursor string
	// Limit is the maximum page size and must already be clamped by the caller
	Limit int
}

// Page is one slice of documents in (createdAt desc, id desc) order
type Page struct {
	Items      []*entity.Document
	NextCursor string
}

// HasNext reports whether another page follows
func (p *Page) HasNext() bool {
	return p.NextCursor != ""
}

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	// Save validates and upserts a document, returning the stored value
	Save(ctx context.Context, doc *entity.Document) (*entity.Document, error)

	// FindByID retrieves a document, or nil when absent
	FindByID(ctx context.Context, id string) (*entity.Document, error)

	// FindAll retrieves every document
	FindAll(ctx context.Context) ([]*entity.Document, error)

	// FindPaginated retrieves one cursor page
	FindPaginated(ctx context.Context, params ListParams) (*Page, error)

	// Delete removes a document by ID
	Delete(ctx context.Context, id string) error

	// Clear removes every document
	Clear(ctx context.Context) error

	// Count returns the number of stored documents
	Count(ctx context.Context) (int64, error)
}
