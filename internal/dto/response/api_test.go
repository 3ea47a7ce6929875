package response

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	before := time.Now().UTC()
	resp := NewError(http.StatusNotFound, "NOT_FOUND", "Document with id x not found")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", resp.Error)
	assert.Equal(t, "Document with id x not found", resp.Message)
	assert.False(t, resp.Timestamp.Before(before))
}

func TestErrorResponse_JSONShape(t *testing.T) {
	resp := NewError(http.StatusBadRequest, "INVALID_DOCUMENT_STATE", "Title cannot be empty")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(400), decoded["statusCode"])
	assert.Equal(t, "INVALID_DOCUMENT_STATE", decoded["error"])
	assert.Equal(t, "Title cannot be empty", decoded["message"])
	assert.Contains(t, decoded, "timestamp")
}

func TestNewCursorPage(t *testing.T) {
	page := NewCursorPage[DocumentResponse](nil, "")

	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(raw))

	page = NewCursorPage([]DocumentResponse{{ID: "a"}}, "tok")
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "tok", page.NextCursor)
}

func TestDocumentResponse_NullAccessCode(t *testing.T) {
	raw, err := json.Marshal(DocumentResponse{ID: "a", Status: "draft"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	v, ok := decoded["accessCode"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
