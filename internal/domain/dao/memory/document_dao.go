// Package memory provides an in-process DocumentDAO backed by a map.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

// documentDAO keeps clones of saved documents so callers never share
// memory with the store.
type documentDAO struct {
	mu    sync.RWMutex
	store map[string]*entity.Document
}

// NewDocumentDAO creates an empty in-memory DocumentDAO.
func NewDocumentDAO() dao.DocumentDAO {
	return &documentDAO{store: make(map[string]*entity.Document)}
}

func (d *documentDAO) Save(_ context.Context, doc *entity.Document) (*entity.Document, error) {
	stored := doc.Clone()

	d.mu.Lock()
	d.store[stored.ID] = stored
	d.mu.Unlock()

	return stored.Clone(), nil
}

func (d *documentDAO) FindByID(_ context.Context, id string) (*entity.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.store[id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (d *documentDAO) FindAll(_ context.Context) ([]*entity.Document, error) {
	return d.sorted(), nil
}

func (d *documentDAO) FindAfter(_ context.Context, after *cursor.Position, limit int) ([]*entity.Document, error) {
	if limit <= 0 {
		return []*entity.Document{}, nil
	}
	all := d.sorted()

	out := make([]*entity.Document, 0, min(limit, len(all)))
	for _, doc := range all {
		if len(out) >= limit {
			break
		}
		if after != nil && !after.After(doc.CreatedAt, doc.ID) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (d *documentDAO) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	delete(d.store, id)
	d.mu.Unlock()
	return nil
}

func (d *documentDAO) DeleteAll(_ context.Context) error {
	d.mu.Lock()
	clear(d.store)
	d.mu.Unlock()
	return nil
}

func (d *documentDAO) Count(_ context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.store)), nil
}

// sorted snapshots the store in created_at desc, id desc order.
func (d *documentDAO) sorted() []*entity.Document {
	d.mu.RLock()
	out := make([]*entity.Document, 0, len(d.store))
	for _, doc := range d.store {
		out = append(out, doc.Clone())
	}
	d.mu.RUnlock()

	slices.SortFunc(out, compareDesc)
	return out
}

func compareDesc(a, b *entity.Document) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
