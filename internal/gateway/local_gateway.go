package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// CodeGenerator produces access codes
type CodeGenerator interface {
	Generate() (string, error)
}

// LocalGateway issues access codes in-process instead of calling the client
// backend. Intended for development.
type LocalGateway struct {
	codes  CodeGenerator
	logger *zap.Logger
}

func NewLocalGateway(codes CodeGenerator, logger *zap.Logger) *LocalGateway {
	return &LocalGateway{codes: codes, logger: logger.With(zap.String("component", "client_gateway"))}
}

func (g *LocalGateway) SendDocument(ctx context.Context, payload service.ClientDocumentPayload) (*service.ClientDocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ExternalService(msgSendFailed, http.StatusBadGateway, err)
	}
	code, err := g.codes.Generate()
	if err != nil {
		return nil, apperrors.ExternalService(msgSendFailed, http.StatusInternalServerError, err)
	}
	g.logger.Debug("Issued local access code", zap.String("document_id", payload.ID))
	return &service.ClientDocumentResult{AccessCode: code}, nil
}
