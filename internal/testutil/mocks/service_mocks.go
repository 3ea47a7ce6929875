package mocks

import (
	"context"
	"time"

	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// MockDocumentService is a mock implementation of DocumentService
type MockDocumentService struct {
	CreateFunc func(ctx context.Context, req *request.CreateDocumentRequest) (*response.CreateDocumentResponse, error)
	GetFunc    func(ctx context.Context, id string) (*response.DocumentResponse, error)
	ListFunc   func(ctx context.Context, req *request.ListDocumentsRequest) (*response.DocumentListResponse, error)
	UpdateFunc func(ctx context.Context, id string, req *request.UpdateDocumentRequest) (*response.DocumentResponse, error)
	SendFunc   func(ctx context.Context, req *request.SendDocumentRequest) (*response.SendDocumentResponse, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func NewMockDocumentService() *MockDocumentService {
	return &MockDocumentService{}
}

// SampleDocument returns a fixed draft document view
func SampleDocument(id string) *response.DocumentResponse {
	return &response.DocumentResponse{
		ID:        id,
		Title:     "Test Document",
		Content:   "This is test content",
		Status:    "draft",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MockDocumentService) Create(ctx context.Context, req *request.CreateDocumentRequest) (*response.CreateDocumentResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return &response.CreateDocumentResponse{ID: "test-id-001"}, nil
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*response.DocumentResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return SampleDocument(id), nil
}

func (m *MockDocumentService) List(ctx context.Context, req *request.ListDocumentsRequest) (*response.DocumentListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, req)
	}
	page := response.NewCursorPage([]response.DocumentResponse{*SampleDocument("test-id-001")}, "")
	return &page, nil
}

func (m *MockDocumentService) Update(ctx context.Context, id string, req *request.UpdateDocumentRequest) (*response.DocumentResponse, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	doc := SampleDocument(id)
	if req.Title != nil {
		doc.Title = *req.Title
	}
	return doc, nil
}

func (m *MockDocumentService) Send(ctx context.Context, req *request.SendDocumentRequest) (*response.SendDocumentResponse, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return &response.SendDocumentResponse{AccessCode: "ACC-123"}, nil
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	if id == "" {
		return apperrors.NotFound("Document with id  not found")
	}
	return nil
}
