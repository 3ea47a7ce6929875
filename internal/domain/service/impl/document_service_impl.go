package impl

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/internal/domain/repository"
	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

const msgInvalidGatewayResponse = "Client backend returned an invalid response"

// documentService implements service.DocumentService
type documentService struct {
	repo     repository.DocumentRepository
	gateway  service.ClientGateway
	clock    service.Clock
	ids      service.IDGenerator
	recorder service.OperationRecorder
	logger   *zap.Logger
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	repo repository.DocumentRepository,
	gateway service.ClientGateway,
	clock service.Clock,
	ids service.IDGenerator,
	recorder service.OperationRecorder,
	logger *zap.Logger,
) service.DocumentService {
	if recorder == nil {
		recorder = service.NopRecorder{}
	}
	return &documentService{
		repo:     repo,
		gateway:  gateway,
		clock:    clock,
		ids:      ids,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *documentService) Create(ctx context.Context, req *request.CreateDocumentRequest) (resp *response.CreateDocumentResponse, err error) {
	ctx, span := observability.StartOperationSpan(ctx, "create")
	defer s.observe(ctx, span, "create", time.Now(), &err)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.InvalidDocumentState("Title cannot be empty")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.InvalidDocumentState("Content cannot be empty")
	}
	if req.ExpiresIn != nil && *req.ExpiresIn <= 0 {
		return nil, apperrors.InvalidDocumentState("Expiration time must be positive")
	}

	doc, err := entity.NewDraft(s.ids.Generate(), title, content, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Document created", zap.String("document_id", doc.ID))
	return &response.CreateDocumentResponse{ID: doc.ID}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (resp *response.DocumentResponse, err error) {
	ctx, span := observability.StartOperationSpan(ctx, "get")
	defer s.observe(ctx, span, "get", time.Now(), &err)

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, req *request.ListDocumentsRequest) (resp *response.DocumentListResponse, err error) {
	ctx, span := observability.StartOperationSpan(ctx, "list")
	defer s.observe(ctx, span, "list", time.Now(), &err)

	page, err := s.repo.FindPaginated(ctx, repository.ListParams{
		Cursor: req.Cursor,
		Limit:  NormalizeLimit(req.Limit),
	})
	if err != nil {
		return nil, err
	}

	items := make([]response.DocumentResponse, 0, len(page.Items))
	for _, doc := range page.Items {
		items = append(items, *toDocumentResponse(doc))
	}
	out := response.NewCursorPage(items, page.NextCursor)
	return &out, nil
}

func (s *documentService) Update(ctx context.Context, id string, req *request.UpdateDocumentRequest) (resp *response.DocumentResponse, err error) {
	ctx, span := observability.StartOperationSpan(ctx, "update")
	defer s.observe(ctx, span, "update", time.Now(), &err)

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.InvalidDocumentState("Title cannot be empty")
		}
	}

	content := current.Content
	if req.Content != nil {
		content = strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, apperrors.InvalidDocumentState("Content cannot be empty")
		}
	}

	status := current.Status
	if req.Status != nil {
		status, err = entity.ParseDocumentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
	}

	accessCode := current.AccessCode
	if req.AccessCode.Set {
		accessCode = nil
		if req.AccessCode.Value != nil {
			code := strings.TrimSpace(*req.AccessCode.Value)
			if code == "" {
				return nil, apperrors.InvalidDocumentState("Access code cannot be empty")
			}
			accessCode = &code
		}
	}
	// A retained code counts too: demoting a sent document must fail.
	if accessCode != nil && *accessCode != "" && status != entity.DocumentStatusFinal {
		return nil, apperrors.InvalidDocumentState("Access code can only be set when document is final")
	}
	if status != entity.DocumentStatusFinal {
		accessCode = nil
	}

	next, err := entity.NewDocument(current.ID, title, content, current.CreatedAt, status, accessCode)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document updated",
		zap.String("document_id", saved.ID),
		zap.String("status", string(saved.Status)),
	)
	return toDocumentResponse(saved), nil
}

func (s *documentService) Send(ctx context.Context, req *request.SendDocumentRequest) (resp *response.SendDocumentResponse, err error) {
	ctx, span := observability.StartOperationSpan(ctx, "send")
	defer s.observe(ctx, span, "send", time.Now(), &err)

	doc, err := s.load(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsFinal() {
		return nil, apperrors.InvalidDocumentState("Document must be finalized before sending")
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, apperrors.InvalidDocumentState("Document content cannot be empty")
	}
	if doc.HasAccessCode() {
		return nil, apperrors.InvalidDocumentState("Document already has an access code")
	}

	result, err := s.gateway.SendDocument(ctx, service.ClientDocumentPayload{
		ID:      doc.ID,
		Title:   doc.Title,
		Content: doc.Content,
	})
	if err != nil {
		s.logger.Warn("Client backend rejected document",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return nil, err
	}
	if result == nil {
		return nil, apperrors.ExternalService(msgInvalidGatewayResponse, http.StatusBadGateway, nil)
	}

	if err := doc.AssignAccessCode(result.AccessCode); err != nil {
		return nil, err
	}
	if _, err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Document sent", zap.String("document_id", doc.ID))
	return &response.SendDocumentResponse{AccessCode: *doc.AccessCode}, nil
}

func (s *documentService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartOperationSpan(ctx, "delete")
	defer s.observe(ctx, span, "delete", time.Now(), &err)

	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Document deleted", zap.String("document_id", id))
	return nil
}

// load fetches a document or fails with NOT_FOUND.
func (s *documentService) load(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFound("Document with id " + id + " not found")
	}
	return doc, nil
}

func (s *documentService) observe(ctx context.Context, span trace.Span, op string, start time.Time, errp *error) {
	s.recorder.RecordDocumentOperation(ctx, op, *errp == nil, time.Since(start))
	observability.EndSpan(span, *errp)
}

// NormalizeLimit applies the default page size, floors fractions and clamps
// to [MinPageLimit, MaxPageLimit].
func NormalizeLimit(limit *float64) int {
	if limit == nil || *limit == 0 || math.IsNaN(*limit) {
		return service.DefaultPageLimit
	}
	n := math.Floor(*limit)
	if n < service.MinPageLimit {
		return service.MinPageLimit
	}
	if n > service.MaxPageLimit {
		return service.MaxPageLimit
	}
	return int(n)
}

func toDocumentResponse(doc *entity.Document) *response.DocumentResponse {
	resp := &response.DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Status:    string(doc.Status),
		CreatedAt: doc.CreatedAt.UTC(),
	}
	if doc.AccessCode != nil {
		code := *doc.AccessCode
		resp.AccessCode = &code
	}
	return resp
}
