package gorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/daotest"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/internal/testutil"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.NewTestSQLiteDB(t)
}

func TestDocumentDAO_Contract(t *testing.T) {
	daotest.RunDocumentDAOSuite(t, func(t *testing.T) dao.DocumentDAO {
		return NewDocumentDAO(setupTestDB(t))
	})
}

func TestDocumentDAO_Migration(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.Migrator().HasTable("documents"))
	assert.True(t, db.Migrator().HasColumn(&entity.Document{}, "access_code"))
	assert.True(t, db.Migrator().HasIndex(&entity.Document{}, "idx_documents_created_at_id"))
}

func TestDocumentDAO_AccessCodeNullRoundTrip(t *testing.T) {
	d := NewDocumentDAO(setupTestDB(t))
	ctx := context.Background()

	code := "ACC-9"
	doc, err := entity.NewDocument("doc-1", "Title", "Body", daotest.BaseTime, entity.DocumentStatusFinal, &code)
	require.NoError(t, err)
	_, err = d.Save(ctx, doc)
	require.NoError(t, err)

	doc.AccessCode = nil
	doc.Status = entity.DocumentStatusDraft
	_, err = d.Save(ctx, doc)
	require.NoError(t, err)

	found, err := d.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.AccessCode)
	assert.Equal(t, entity.DocumentStatusDraft, found.Status)
}

func TestDocumentDAO_ClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	d := NewDocumentDAO(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = d.FindByID(context.Background(), "doc-1")
	assert.Error(t, err)

	_, err = d.FindAfter(context.Background(), nil, 5)
	assert.Error(t, err)
}

func TestDocumentDAO_Contract_Postgres(t *testing.T) {
	cfg := testutil.DefaultTestConfig()
	daotest.RunDocumentDAOSuite(t, func(t *testing.T) dao.DocumentDAO {
		return NewDocumentDAO(testutil.NewTestPostgresDB(t, cfg))
	})
}

func TestDocumentDAO_Contract_MySQL(t *testing.T) {
	cfg := testutil.DefaultTestConfig()
	daotest.RunDocumentDAOSuite(t, func(t *testing.T) dao.DocumentDAO {
		return NewDocumentDAO(testutil.NewTestMySQLDB(t, cfg))
	})
}
