package impl

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/memory"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/internal/domain/repository"
	repoimpl "github.com/julienreichel/oc-provider-backend/internal/domain/repository/impl"
	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
	"github.com/julienreichel/oc-provider-backend/internal/testutil"
	"github.com/julienreichel/oc-provider-backend/internal/testutil/mocks"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

var serviceEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type spyRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *spyRecorder) RecordDocumentOperation(_ context.Context, op string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "ok"
	if !success {
		outcome = "fail"
	}
	r.entries = append(r.entries, op+":"+outcome)
}

type serviceFixture struct {
	svc      service.DocumentService
	repo     repository.DocumentRepository
	gateway  *mocks.MockClientGateway
	clock    *testutil.FakeClock
	recorder *spyRecorder
}

func setupDocumentService(t *testing.T) *serviceFixture {
	t.Helper()
	repo := repoimpl.NewDocumentRepository(memory.NewDocumentDAO())
	gateway := mocks.NewMockClientGateway()
	clock := testutil.NewFakeClock(serviceEpoch)
	recorder := &spyRecorder{}

	svc := NewDocumentService(repo, gateway, clock, testutil.NewSequentialIDGenerator(), recorder, testutil.NewTestLogger(t))
	return &serviceFixture{svc: svc, repo: repo, gateway: gateway, clock: clock, recorder: recorder}
}

func ptr[T any](v T) *T { return &v }

func assertInvalidState(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, apperrors.CodeInvalidDocumentState, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

// seedFinal stores a finalized document without an access code.
func (f *serviceFixture) seedFinal(t *testing.T, id string) {
	t.Helper()
	doc, err := entity.NewDocument(id, "Final", "Ready to ship", serviceEpoch, entity.DocumentStatusFinal, nil)
	require.NoError(t, err)
	_, err = f.repo.Save(context.Background(), doc)
	require.NoError(t, err)
}

func TestDocumentService_Create(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, &request.CreateDocumentRequest{
		Title:   "Test Document",
		Content: "This is test content",
	})
	require.NoError(t, err)
	assert.Equal(t, "test-id-001", resp.ID)

	all, err := f.repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Test Document", all[0].Title)
	assert.Equal(t, entity.DocumentStatusDraft, all[0].Status)
	assert.Nil(t, all[0].AccessCode)
	assert.True(t, all[0].CreatedAt.Equal(serviceEpoch))
}

func TestDocumentService_Create_TrimsInput(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "  Spaced  ", Content: "\tbody\n"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spaced", got.Title)
	assert.Equal(t, "body", got.Content)
}

func TestDocumentService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     request.CreateDocumentRequest
		message string
	}{
		{"empty title", request.CreateDocumentRequest{Title: "", Content: "x"}, "Title cannot be empty"},
		{"blank title", request.CreateDocumentRequest{Title: "   ", Content: "x"}, "Title cannot be empty"},
		{"empty content", request.CreateDocumentRequest{Title: "t", Content: " "}, "Content cannot be empty"},
		{"zero expiry", request.CreateDocumentRequest{Title: "t", Content: "c", ExpiresIn: ptr(0.0)}, "Expiration time must be positive"},
		{"negative expiry", request.CreateDocumentRequest{Title: "t", Content: "c", ExpiresIn: ptr(-5.0)}, "Expiration time must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDocumentService(t)
			_, err := f.svc.Create(context.Background(), &tt.req)
			assertInvalidState(t, err, tt.message)

			count, err := f.repo.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestDocumentService_Create_PositiveExpiryAccepted(t *testing.T) {
	f := setupDocumentService(t)
	_, err := f.svc.Create(context.Background(), &request.CreateDocumentRequest{Title: "t", Content: "c", ExpiresIn: ptr(3600.0)})
	require.NoError(t, err)
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	f := setupDocumentService(t)

	_, err := f.svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Document with id missing not found", err.Error())
}

func TestDocumentService_List_Paginates(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "Doc", Content: "Body"})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	first, err := f.svc.List(ctx, &request.ListDocumentsRequest{Limit: ptr(2.0)})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "test-id-005", first.Items[0].ID)
	assert.Equal(t, "test-id-004", first.Items[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.List(ctx, &request.ListDocumentsRequest{Cursor: first.NextCursor, Limit: ptr(2.0)})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "test-id-003", second.Items[0].ID)

	third, err := f.svc.List(ctx, &request.ListDocumentsRequest{Cursor: second.NextCursor, Limit: ptr(2.0)})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Equal(t, "test-id-001", third.Items[0].ID)
	assert.Empty(t, third.NextCursor)
}

func TestDocumentService_List_EmptyStore(t *testing.T) {
	f := setupDocumentService(t)

	page, err := f.svc.List(context.Background(), &request.ListDocumentsRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}

func TestDocumentService_List_InvalidCursor(t *testing.T) {
	f := setupDocumentService(t)

	_, err := f.svc.List(context.Background(), &request.ListDocumentsRequest{Cursor: "%%%"})
	assertInvalidState(t, err, "Invalid pagination cursor")
}

func TestDocumentService_Update_FinalWithAccessCode(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "Test Document", Content: "This is test content"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{
		Status:     ptr("final"),
		AccessCode: request.Of("CODE-123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Status)
	require.NotNil(t, updated.AccessCode)
	assert.Equal(t, "CODE-123", *updated.AccessCode)
	assert.Equal(t, "Test Document", updated.Title)
	assert.True(t, updated.CreatedAt.Equal(serviceEpoch))
}

func TestDocumentService_Update_DraftWithAccessCodeRejected(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "Test Document", Content: "This is test content"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{
		Status:     ptr("draft"),
		AccessCode: request.Of("CODE-123"),
	})
	assertInvalidState(t, err, "Access code can only be set when document is final")

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", stored.Status)
	assert.Nil(t, stored.AccessCode)
}

func TestDocumentService_Update_RevertToDraftWithAccessCodeRejected(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{Status: ptr("final"), AccessCode: request.Of("CODE-1")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{Status: ptr("draft")})
	assertInvalidState(t, err, "Access code can only be set when document is final")

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Status)
	require.NotNil(t, stored.AccessCode)
	assert.Equal(t, "CODE-1", *stored.AccessCode)
}

func TestDocumentService_SentDocumentCannotBeSentAgain(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()
	f.seedFinal(t, "doc-1")

	_, err := f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-1"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "doc-1", &request.UpdateDocumentRequest{Status: ptr("draft")})
	assertInvalidState(t, err, "Access code can only be set when document is final")
	_, err = f.svc.Update(ctx, "doc-1", &request.UpdateDocumentRequest{Status: ptr("final")})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-1"})
	assertInvalidState(t, err, "Document already has an access code")
	assert.Len(t, f.gateway.Calls(), 1)
}

func TestDocumentService_Update_ClearThenDemote(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{Status: ptr("final"), AccessCode: request.Of("CODE-1")})
	require.NoError(t, err)

	reverted, err := f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{
		Status:     ptr("draft"),
		AccessCode: request.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", reverted.Status)
	assert.Nil(t, reverted.AccessCode)
}

func TestDocumentService_Update_NullClearsAccessCode(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{Status: ptr("final"), AccessCode: request.Of("CODE-1")})
	require.NoError(t, err)

	cleared, err := f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{AccessCode: request.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "final", cleared.Status)
	assert.Nil(t, cleared.AccessCode)
}

func TestDocumentService_Update_OmittedFieldsUnchanged(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "Original", Content: "Body"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, &request.UpdateDocumentRequest{Title: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Body", updated.Content)
	assert.Equal(t, "draft", updated.Status)
}

func TestDocumentService_Update_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     request.UpdateDocumentRequest
		message string
	}{
		{"blank title", request.UpdateDocumentRequest{Title: ptr("  ")}, "Title cannot be empty"},
		{"blank content", request.UpdateDocumentRequest{Content: ptr("")}, "Content cannot be empty"},
		{"unknown status", request.UpdateDocumentRequest{Status: ptr("archived")}, "Invalid document status: archived"},
		{"blank access code", request.UpdateDocumentRequest{Status: ptr("final"), AccessCode: request.Of("  ")}, "Access code cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupDocumentService(t)
			ctx := context.Background()
			created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
			require.NoError(t, err)

			_, err = f.svc.Update(ctx, created.ID, &tt.req)
			assertInvalidState(t, err, tt.message)
		})
	}
}

func TestDocumentService_Update_NotFound(t *testing.T) {
	f := setupDocumentService(t)

	_, err := f.svc.Update(context.Background(), "nope", &request.UpdateDocumentRequest{Title: ptr("x")})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDocumentService_Send_DraftRejected(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: created.ID})
	assertInvalidState(t, err, "Document must be finalized before sending")
	assert.Empty(t, f.gateway.Calls())
}

func TestDocumentService_Send_Success(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()
	f.seedFinal(t, "doc-final")

	resp, err := f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-final"})
	require.NoError(t, err)
	assert.Equal(t, "ACC-123", resp.AccessCode)

	calls := f.gateway.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, service.ClientDocumentPayload{ID: "doc-final", Title: "Final", Content: "Ready to ship"}, calls[0])

	stored, err := f.svc.Get(ctx, "doc-final")
	require.NoError(t, err)
	require.NotNil(t, stored.AccessCode)
	assert.Equal(t, "ACC-123", *stored.AccessCode)
}

func TestDocumentService_Send_AlreadySent(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()
	f.seedFinal(t, "doc-final")

	_, err := f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-final"})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-final"})
	assertInvalidState(t, err, "Document already has an access code")
	assert.Len(t, f.gateway.Calls(), 1)
}

func TestDocumentService_Send_GatewayFailureLeavesDocumentUntouched(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()
	f.seedFinal(t, "doc-final")
	f.gateway.SendErr = apperrors.ExternalService("Failed to send document to client backend", http.StatusBadGateway, errors.New("boom"))

	_, err := f.svc.Send(ctx, &request.SendDocumentRequest{DocumentID: "doc-final"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrExternalService))
	assert.Equal(t, http.StatusBadGateway, apperrors.GetStatus(err))

	stored, err := f.svc.Get(ctx, "doc-final")
	require.NoError(t, err)
	assert.Nil(t, stored.AccessCode)
}

func TestDocumentService_Send_BlankAccessCodeFromGateway(t *testing.T) {
	f := setupDocumentService(t)
	f.seedFinal(t, "doc-final")
	f.gateway.AccessCode = "   "

	_, err := f.svc.Send(context.Background(), &request.SendDocumentRequest{DocumentID: "doc-final"})
	assertInvalidState(t, err, "Access code cannot be empty")
}

func TestDocumentService_Send_NilGatewayResult(t *testing.T) {
	f := setupDocumentService(t)
	f.seedFinal(t, "doc-final")
	f.gateway.SendDocumentFunc = func(context.Context, service.ClientDocumentPayload) (*service.ClientDocumentResult, error) {
		return nil, nil
	}

	_, err := f.svc.Send(context.Background(), &request.SendDocumentRequest{DocumentID: "doc-final"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrExternalService))
	assert.Equal(t, http.StatusBadGateway, apperrors.GetStatus(err))

	stored, err := f.svc.Get(context.Background(), "doc-final")
	require.NoError(t, err)
	assert.Nil(t, stored.AccessCode)
}

func TestDocumentService_Send_NotFound(t *testing.T) {
	f := setupDocumentService(t)

	_, err := f.svc.Send(context.Background(), &request.SendDocumentRequest{DocumentID: "ghost"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.gateway.Calls())
}

func TestDocumentService_Delete(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.Get(ctx, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = f.svc.Delete(ctx, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDocumentService_RecordsOperations(t *testing.T) {
	f := setupDocumentService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, _ = f.svc.Get(ctx, "missing")

	assert.Equal(t, []string{"create:ok", "get:fail"}, f.recorder.entries)
}

func TestDocumentService_TracesOperations(t *testing.T) {
	prev := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	f := setupDocumentService(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, _ = f.svc.Get(ctx, "missing")

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "document.create", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, "document.get", ended[1].Name())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
	require.Len(t, ended[1].Events(), 1)
	assert.Equal(t, "exception", ended[1].Events()[0].Name)
}

func TestNewDocumentService_NilRecorder(t *testing.T) {
	repo := repoimpl.NewDocumentRepository(memory.NewDocumentDAO())
	svc := NewDocumentService(repo, mocks.NewMockClientGateway(), testutil.NewFakeClock(serviceEpoch),
		testutil.NewSequentialIDGenerator(), nil, testutil.NewTestLogger(t))

	_, err := svc.Create(context.Background(), &request.CreateDocumentRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *float64
		want  int
	}{
		{"absent", nil, 20},
		{"zero", ptr(0.0), 20},
		{"NaN", ptr(math.NaN()), 20},
		{"negative", ptr(-3.0), 1},
		{"fraction below one", ptr(0.5), 1},
		{"fraction floored", ptr(7.9), 7},
		{"within range", ptr(35.0), 35},
		{"upper bound", ptr(50.0), 50},
		{"above maximum", ptr(500.0), 50},
		{"infinity", ptr(math.Inf(1)), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLimit(tt.limit))
		})
	}
}
