package mocks

import (
	"context"
	"sync"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
)

// MockClientGateway is a mock implementation of service.ClientGateway
type MockClientGateway struct {
	mu    sync.Mutex
	calls []service.ClientDocumentPayload

	SendDocumentFunc func(ctx context.Context, payload service.ClientDocumentPayload) (*service.ClientDocumentResult, error)

	// AccessCode is returned when SendDocumentFunc is nil
	AccessCode string
	// SendErr forces SendDocument to fail when SendDocumentFunc is nil
	SendErr error
}

func NewMockClientGateway() *MockClientGateway {
	return &MockClientGateway{AccessCode: "ACC-123"}
}

func (m *MockClientGateway) SendDocument(ctx context.Context, payload service.ClientDocumentPayload) (*service.ClientDocumentResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, payload)
	m.mu.Unlock()

	if m.SendDocumentFunc != nil {
		return m.SendDocumentFunc(ctx, payload)
	}
	if m.SendErr != nil {
		return nil, m.SendErr
	}
	return &service.ClientDocumentResult{AccessCode: m.AccessCode}, nil
}

// Calls returns the payloads received so far
func (m *MockClientGateway) Calls() []service.ClientDocumentPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.ClientDocumentPayload, len(m.calls))
	copy(out, m.calls)
	return out
}
