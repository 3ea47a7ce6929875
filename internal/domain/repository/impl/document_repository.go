package impl

import (
	"context"
	"strconv"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/internal/domain/repository"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// documentRepository implements repository.DocumentRepository by delegating to DocumentDAO.
type documentRepository struct {
	dao dao.DocumentDAO
}

// NewDocumentRepository creates a new DocumentRepository instance.
func NewDocumentRepository(documentDAO dao.DocumentDAO) repository.DocumentRepository {
	return &documentRepository{dao: documentDAO}
}

// Save rejects documents that violate an invariant before they reach storage.
func (r *documentRepository) Save(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return r.dao.Save(ctx, doc)
}

// FindByID retrieves a document by its ID.
func (r *documentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.dao.FindByID(ctx, id)
}

// FindAll retrieves every document.
func (r *documentRepository) FindAll(ctx context.Context) ([]*entity.Document, error) {
	return r.dao.FindAll(ctx)
}

// FindPaginated reads one extra row to learn whether a further page exists.
// The next cursor points at the last returned item, so the following page
// starts with the first item this page left out.
func (r *documentRepository) FindPaginated(ctx context.Context, params repository.ListParams) (*repository.Page, error) {
	if params.Limit < 1 {
		return nil, apperrors.InvalidDocumentState("Limit must be a positive integer, got " + strconv.Itoa(params.Limit))
	}

	var after *cursor.Position
	if params.Cursor != "" {
		pos, err := cursor.Decode(params.Cursor)
		if err != nil {
			return nil, err
		}
		after = &pos
	}

	docs, err := r.dao.FindAfter(ctx, after, params.Limit+1)
	if err != nil {
		return nil, err
	}

	page := &repository.Page{Items: docs}
	if len(docs) > params.Limit {
		page.Items = docs[:params.Limit]
		last := page.Items[params.Limit-1]
		page.NextCursor = cursor.Encode(last.CreatedAt, last.ID)
	}
	return page, nil
}

// Delete removes a document by ID.
func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return r.dao.Delete(ctx, id)
}

// Clear removes every document.
func (r *documentRepository) Clear(ctx context.Context) error {
	return r.dao.DeleteAll(ctx)
}

// Count returns the number of stored documents.
func (r *documentRepository) Count(ctx context.Context) (int64, error) {
	return r.dao.Count(ctx)
}
