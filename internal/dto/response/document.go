package response

import "time"

// DocumentResponse is the public view of a document
type DocumentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	AccessCode *string   `json:"accessCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateDocumentResponse carries the id of a new document
type CreateDocumentResponse struct {
	ID string `json:"id"`
}

// DocumentListResponse is one page of documents
type DocumentListResponse = CursorPage[DocumentResponse]

// SendDocumentResponse carries the access code issued by the client backend
type SendDocumentResponse struct {
	AccessCode string `json:"accessCode"`
}
