package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

var testCreatedAt = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func assertInvalidState(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidDocumentState), "expected INVALID_DOCUMENT_STATE, got %v", err)
	if message != "" {
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, message, appErr.Message)
	}
}

func TestDocument_TableName(t *testing.T) {
	assert.Equal(t, "documents", Document{}.TableName())
}

func TestDocumentStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   DocumentStatus
		expected bool
	}{
		{DocumentStatusDraft, true},
		{DocumentStatusFinal, true},
		{"archived", false},
		{"", false},
		{"FINAL", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.status.IsValid(), "status %q", tt.status)
	}
}

func TestParseDocumentStatus(t *testing.T) {
	s, err := ParseDocumentStatus("final")
	require.NoError(t, err)
	assert.Equal(t, DocumentStatusFinal, s)

	_, err = ParseDocumentStatus("published")
	assertInvalidState(t, err, "Invalid document status: published")
}

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		title      string
		content    string
		createdAt  time.Time
		status     DocumentStatus
		accessCode *string
		wantErr    string
	}{
		{name: "valid draft", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: DocumentStatusDraft},
		{name: "empty status defaults to draft", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt},
		{name: "valid final without code", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: DocumentStatusFinal},
		{name: "valid final with code", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: DocumentStatusFinal, accessCode: strPtr("ACC-1")},
		{name: "empty id", id: "  ", title: "Title", content: "Body", createdAt: testCreatedAt, wantErr: "Document id cannot be empty"},
		{name: "empty title", id: "doc-1", title: "\t", content: "Body", createdAt: testCreatedAt, wantErr: "Document title cannot be empty"},
		{name: "empty content", id: "doc-1", title: "Title", content: "", createdAt: testCreatedAt, wantErr: "Document content cannot be empty"},
		{name: "zero createdAt", id: "doc-1", title: "Title", content: "Body", wantErr: "Document createdAt must be a valid date"},
		{name: "createdAt past year 9999", id: "doc-1", title: "Title", content: "Body", createdAt: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), wantErr: "Document createdAt must be between years 0001 and 9999"},
		{name: "createdAt before year 1", id: "doc-1", title: "Title", content: "Body", createdAt: time.Date(-1, 6, 1, 0, 0, 0, 0, time.UTC), wantErr: "Document createdAt must be between years 0001 and 9999"},
		{name: "createdAt at upper bound", id: "doc-1", title: "Title", content: "Body", createdAt: time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), status: DocumentStatusDraft},
		{name: "unknown status", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: "archived", wantErr: "Invalid document status: archived"},
		{name: "access code on draft", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: DocumentStatusDraft, accessCode: strPtr("ACC-1"), wantErr: "Access code can only be assigned to finalized documents"},
		{name: "blank access code", id: "doc-1", title: "Title", content: "Body", createdAt: testCreatedAt, status: DocumentStatusFinal, accessCode: strPtr("   "), wantErr: "Access code cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewDocument(tt.id, tt.title, tt.content, tt.createdAt, tt.status, tt.accessCode)
			if tt.wantErr != "" {
				assertInvalidState(t, err, tt.wantErr)
				assert.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, doc)
			assert.True(t, doc.Status.IsValid())
		})
	}
}

func TestNewDraft(t *testing.T) {
	doc, err := NewDraft("doc-1", "Title", "Body", testCreatedAt)
	require.NoError(t, err)

	assert.Equal(t, DocumentStatusDraft, doc.Status)
	assert.Nil(t, doc.AccessCode)
	assert.False(t, doc.IsFinal())
	assert.False(t, doc.HasAccessCode())
}

func TestDocument_Finalize(t *testing.T) {
	doc, err := NewDraft("doc-1", "Title", "Body", testCreatedAt)
	require.NoError(t, err)

	require.NoError(t, doc.Finalize())
	assert.True(t, doc.IsFinal())
	assert.Nil(t, doc.AccessCode)

	err = doc.Finalize()
	assertInvalidState(t, err, "Document is already finalized")
	assert.True(t, doc.IsFinal())
}

func TestDocument_Finalize_EmptyContent(t *testing.T) {
	doc, err := NewDraft("doc-1", "Title", "Body", testCreatedAt)
	require.NoError(t, err)
	doc.Content = "   "

	err = doc.Finalize()
	assertInvalidState(t, err, "Cannot finalize a document with empty content")
	assert.Equal(t, DocumentStatusDraft, doc.Status)
}

func TestDocument_AssignAccessCode(t *testing.T) {
	t.Run("draft is rejected", func(t *testing.T) {
		doc, err := NewDraft("doc-1", "Title", "Body", testCreatedAt)
		require.NoError(t, err)

		err = doc.AssignAccessCode("ACC-1")
		assertInvalidState(t, err, "Access code can only be assigned to finalized documents")
		assert.Nil(t, doc.AccessCode)
	})

	t.Run("empty code is rejected", func(t *testing.T) {
		doc, err := NewDocument("doc-1", "Title", "Body", testCreatedAt, DocumentStatusFinal, nil)
		require.NoError(t, err)

		for _, code := range []string{"", "   ", "\n\t"} {
			err = doc.AssignAccessCode(code)
			assertInvalidState(t, err, "Access code cannot be empty")
		}
		assert.Nil(t, doc.AccessCode)
	})

	t.Run("code is trimmed and stored", func(t *testing.T) {
		doc, err := NewDocument("doc-1", "Title", "Body", testCreatedAt, DocumentStatusFinal, nil)
		require.NoError(t, err)

		require.NoError(t, doc.AssignAccessCode("  ACC-123  "))
		require.NotNil(t, doc.AccessCode)
		assert.Equal(t, "ACC-123", *doc.AccessCode)
		assert.True(t, doc.HasAccessCode())
	})
}

func TestDocument_Lifecycle(t *testing.T) {
	doc, err := NewDraft("doc-1", "Title", "Body", testCreatedAt)
	require.NoError(t, err)

	require.NoError(t, doc.Finalize())
	require.NoError(t, doc.AssignAccessCode("CODE"))
	require.NoError(t, doc.Validate())

	assert.Equal(t, DocumentStatusFinal, doc.Status)
	assert.Equal(t, "CODE", *doc.AccessCode)
}

func TestDocument_Clone(t *testing.T) {
	doc, err := NewDocument("doc-1", "Title", "Body", testCreatedAt, DocumentStatusFinal, strPtr("ACC"))
	require.NoError(t, err)

	c := doc.Clone()
	require.NotNil(t, c)
	assert.Equal(t, doc, c)

	*c.AccessCode = "CHANGED"
	c.Title = "Other"
	assert.Equal(t, "ACC", *doc.AccessCode)
	assert.Equal(t, "Title", doc.Title)

	var nilDoc *Document
	assert.Nil(t, nilDoc.Clone())
}
