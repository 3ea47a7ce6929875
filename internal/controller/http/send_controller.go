package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
)

// SendController transfers finalized documents to the client backend
type SendController struct {
	documentService service.DocumentService
	guards          []gin.HandlerFunc
}

// NewSendController creates a new SendController. guards run before the
// handler, typically a rate limiter.
func NewSendController(documentService service.DocumentService, guards ...gin.HandlerFunc) *SendController {
	return &SendController{documentService: documentService, guards: guards}
}

// RegisterRoutes registers the send route
func (c *SendController) RegisterRoutes(router gin.IRouter) {
	handlers := append(append([]gin.HandlerFunc{}, c.guards...), c.Send)
	router.POST("/send", handlers...)
}

// Send transfers a final document and returns the issued access code
// @Summary Send document to client backend
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body request.SendDocumentRequest true "Document to send"
// @Success 200 {object} response.SendDocumentResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /send [post]
func (c *SendController) Send(ctx *gin.Context) {
	var req request.SendDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	sent, err := c.documentService.Send(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sent)
}
