package request

// CreateDocumentRequest represents a document creation request.
// Emptiness of title and content is checked by the service so the caller
// receives the domain error message.
type CreateDocumentRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ExpiresIn *float64 `json:"expiresIn,omitempty"`
}

// UpdateDocumentRequest represents a full-replace update; omitted fields keep
// their current value
type UpdateDocumentRequest struct {
	Title      *string          `json:"title,omitempty"`
	Content    *string          `json:"content,omitempty"`
	Status     *string          `json:"status,omitempty" binding:"omitempty,oneof=draft final"`
	AccessCode Nullable[string] `json:"accessCode"`
}

// ListDocumentsRequest represents cursor pagination query parameters
type ListDocumentsRequest struct {
	Cursor string   `form:"cursor"`
	Limit  *float64 `form:"limit"`
}

// SendDocumentRequest represents a request to transfer a document to the client backend
type SendDocumentRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
}
