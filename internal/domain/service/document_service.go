package service

import (
	"context"

	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
)

// Page size bounds for ListDocuments
const (
	DefaultPageLimit = 20
	MinPageLimit     = 1
	MaxPageLimit     = 50
)

// DocumentService defines the document use cases
type DocumentService interface {
	// Create validates and stores a new draft document
	Create(ctx context.Context, req *request.CreateDocumentRequest) (*response.CreateDocumentResponse, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*response.DocumentResponse, error)

	// List retrieves one cursor page of documents, newest first
	List(ctx context.Context, req *request.ListDocumentsRequest) (*response.DocumentListResponse, error)

	// Update replaces a document's editable fields
	Update(ctx context.Context, id string, req *request.UpdateDocumentRequest) (*response.DocumentResponse, error)

	// Send transfers a finalized document to the client backend and stores
	// the issued access code
	Send(ctx context.Context, req *request.SendDocumentRequest) (*response.SendDocumentResponse, error)

	// Delete removes a document
	Delete(ctx context.Context, id string) error
}
