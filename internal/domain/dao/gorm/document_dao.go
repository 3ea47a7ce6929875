package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

// documentDAO implements dao.DocumentDAO using GORM for SQL databases.
type documentDAO struct {
	*baseGormDAO[entity.Document]
}

// NewDocumentDAO creates a new GORM-based DocumentDAO.
func NewDocumentDAO(db *gorm.DB) dao.DocumentDAO {
	return &documentDAO{
		baseGormDAO: newBaseGormDAO[entity.Document](db),
	}
}

// Save upserts the document. Timestamps are written in UTC so that string
// comparison on SQLite matches chronological order.
func (d *documentDAO) Save(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	row := doc.Clone()
	row.CreatedAt = row.CreatedAt.UTC()

	if err := d.upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return row.Clone(), nil
}

// FindByID normalizes the loaded timestamp to UTC.
func (d *documentDAO) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := d.baseGormDAO.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	if doc != nil {
		doc.CreatedAt = doc.CreatedAt.UTC()
	}
	return doc, nil
}

// FindAll returns every document, newest first.
func (d *documentDAO) FindAll(ctx context.Context) ([]*entity.Document, error) {
	var docs []*entity.Document
	err := d.getDB().WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return normalize(docs), nil
}

// FindAfter runs the keyset query backing cursor pagination.
func (d *documentDAO) FindAfter(ctx context.Context, after *cursor.Position, limit int) ([]*entity.Document, error) {
	if limit <= 0 {
		return []*entity.Document{}, nil
	}

	query := d.getDB().WithContext(ctx).Model(&entity.Document{})
	if after != nil {
		createdAt := after.CreatedAt.UTC()
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, after.ID)
	}

	var docs []*entity.Document
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("paginate documents: %w", err)
	}
	return normalize(docs), nil
}

func normalize(docs []*entity.Document) []*entity.Document {
	for _, doc := range docs {
		doc.CreatedAt = doc.CreatedAt.UTC()
	}
	return docs
}
