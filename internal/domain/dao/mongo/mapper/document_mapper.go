package mapper

import (
	"time"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo/document"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
)

// DocumentMapper converts between Document entity and DocumentRecord.
type DocumentMapper struct{}

// NewDocumentMapper creates a new DocumentMapper instance.
func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

// ToDocument converts a Document entity to a DocumentRecord.
func (m *DocumentMapper) ToDocument(doc *entity.Document) *document.DocumentRecord {
	if doc == nil {
		return nil
	}

	rec := &document.DocumentRecord{
		ID:              doc.ID,
		Title:           doc.Title,
		Content:         doc.Content,
		Status:          string(doc.Status),
		CreatedAt:       doc.CreatedAt.UTC(),
		CreatedAtMicros: doc.CreatedAt.UnixMicro(),
	}
	if doc.AccessCode != nil {
		code := *doc.AccessCode
		rec.AccessCode = &code
	}
	return rec
}

// ToEntity converts a DocumentRecord to a Document entity.
func (m *DocumentMapper) ToEntity(rec *document.DocumentRecord) *entity.Document {
	if rec == nil {
		return nil
	}

	createdAt := rec.CreatedAt.UTC()
	if rec.CreatedAtMicros != 0 {
		createdAt = time.UnixMicro(rec.CreatedAtMicros).UTC()
	}

	doc := &entity.Document{
		ID:        rec.ID,
		Title:     rec.Title,
		Content:   rec.Content,
		Status:    entity.DocumentStatus(rec.Status),
		CreatedAt: createdAt,
	}
	if rec.AccessCode != nil {
		code := *rec.AccessCode
		doc.AccessCode = &code
	}
	return doc
}

// ToEntities converts a slice of DocumentRecords to Document entities.
func (m *DocumentMapper) ToEntities(recs []document.DocumentRecord) []*entity.Document {
	docs := make([]*entity.Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, m.ToEntity(&recs[i]))
	}
	return docs
}
