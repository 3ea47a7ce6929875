// Package daotest holds the behavioural contract every DocumentDAO
// implementation must satisfy.
package daotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

// BaseTime is the creation time of the first seeded document.
var BaseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Factory returns a fresh, empty DAO for one subtest.
type Factory func(t *testing.T) dao.DocumentDAO

// NewDoc builds a valid draft document.
func NewDoc(t *testing.T, id string, createdAt time.Time) *entity.Document {
	t.Helper()
	doc, err := entity.NewDraft(id, "Title "+id, "Content "+id, createdAt)
	require.NoError(t, err)
	return doc
}

// RunDocumentDAOSuite runs the DocumentDAO contract against newDAO.
func RunDocumentDAOSuite(t *testing.T, newDAO Factory) {
	t.Run("save then find", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		doc := NewDoc(t, "doc-1", BaseTime)
		saved, err := d.Save(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, "doc-1", saved.ID)

		found, err := d.FindByID(ctx, "doc-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, doc.Title, found.Title)
		assert.Equal(t, doc.Content, found.Content)
		assert.Equal(t, entity.DocumentStatusDraft, found.Status)
		assert.Nil(t, found.AccessCode)
		assert.True(t, found.CreatedAt.Equal(BaseTime))
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		d := newDAO(t)

		found, err := d.FindByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("save replaces existing document", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		_, err := d.Save(ctx, NewDoc(t, "doc-1", BaseTime))
		require.NoError(t, err)

		code := "ACC-1"
		updated, err := entity.NewDocument("doc-1", "New title", "New content", BaseTime, entity.DocumentStatusFinal, &code)
		require.NoError(t, err)
		_, err = d.Save(ctx, updated)
		require.NoError(t, err)

		found, err := d.FindByID(ctx, "doc-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "New title", found.Title)
		assert.Equal(t, entity.DocumentStatusFinal, found.Status)
		require.NotNil(t, found.AccessCode)
		assert.Equal(t, "ACC-1", *found.AccessCode)

		count, err := d.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("returned values are detached", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		doc := NewDoc(t, "doc-1", BaseTime)
		_, err := d.Save(ctx, doc)
		require.NoError(t, err)
		doc.Title = "mutated after save"

		found, err := d.FindByID(ctx, "doc-1")
		require.NoError(t, err)
		found.Title = "mutated after load"

		again, err := d.FindByID(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "Title doc-1", again.Title)
	})

	t.Run("find all", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := d.Save(ctx, NewDoc(t, fmt.Sprintf("doc-%d", i), BaseTime.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		all, err := d.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("delete and delete all", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		for _, id := range []string{"a", "b", "c"} {
			_, err := d.Save(ctx, NewDoc(t, id, BaseTime))
			require.NoError(t, err)
		}

		require.NoError(t, d.Delete(ctx, "a"))
		require.NoError(t, d.Delete(ctx, "does-not-exist"))

		found, err := d.FindByID(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, found)

		count, err := d.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		require.NoError(t, d.DeleteAll(ctx))
		count, err = d.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("find after orders by created_at then id descending", func(t *testing.T) {
		d := newDAO(t)
		ctx := context.Background()

		// Two documents share the newest timestamp to exercise the id tie-break.
		seed := []struct {
			id     string
			offset time.Duration
		}{
			{"a", 0},
			{"b", time.Minute},
			{"c", 2 * time.Minute},
			{"d", 2 * time.Minute},
			{"e", time.Second},
		}
		for _, s := range seed {
			_, err := d.Save(ctx, NewDoc(t, s.id, BaseTime.Add(s.offset)))
			require.NoError(t, err)
		}

		page, err := d.FindAfter(ctx, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "c", "b", "e", "a"}, ids(page))

		page, err = d.FindAfter(ctx, nil, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "c"}, ids(page))

		after := &cursor.Position{CreatedAt: BaseTime.Add(2 * time.Minute), ID: "d"}
		page, err = d.FindAfter(ctx, after, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, ids(page))

		after = &cursor.Position{CreatedAt: BaseTime.Add(time.Second), ID: "e"}
		page, err = d.FindAfter(ctx, after, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(page))

		after = &cursor.Position{CreatedAt: BaseTime, ID: "a"}
		page, err = d.FindAfter(ctx, after, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func ids(docs []*entity.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
