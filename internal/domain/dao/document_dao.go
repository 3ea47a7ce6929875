package dao

import (
	"context"

	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

// DocumentDAO extends BaseDAO with keyset pagination over documents.
type DocumentDAO interface {
	BaseDAO[entity.Document, string]

	// FindAfter returns up to limit documents ordered by created_at desc,
	// id desc, starting strictly after the given position. A nil position
	// starts from the most recent document.
	FindAfter(ctx context.Context, after *cursor.Position, limit int) ([]*entity.Document, error)
}
