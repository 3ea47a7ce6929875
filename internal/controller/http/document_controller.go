package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/dto/request"
)

// DocumentController handles document CRUD endpoints
type DocumentController struct {
	documentService service.DocumentService
}

// NewDocumentController creates a new DocumentController instance
func NewDocumentController(documentService service.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// RegisterRoutes registers the document routes
func (c *DocumentController) RegisterRoutes(router gin.IRouter) {
	documents := router.Group("/documents")
	{
		documents.POST("", c.Create)
		documents.GET("", c.List)
		documents.GET("/:id", c.Get)
		documents.PUT("/:id", c.Update)
		documents.DELETE("/:id", c.Delete)
	}
}

// Create creates a draft document
// @Summary Create document
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body request.CreateDocumentRequest true "Document"
// @Success 201 {object} response.CreateDocumentResponse
// @Router /documents [post]
func (c *DocumentController) Create(ctx *gin.Context) {
	var req request.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	created, err := c.documentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// List returns one page of documents, newest first
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param cursor query string false "Continuation token"
// @Param limit query number false "Page size" default(20)
// @Success 200 {object} response.DocumentListResponse
// @Router /documents [get]
func (c *DocumentController) List(ctx *gin.Context) {
	var req request.ListDocumentsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	page, err := c.documentService.List(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// Get returns a single document
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.DocumentResponse
// @Router /documents/{id} [get]
func (c *DocumentController) Get(ctx *gin.Context) {
	doc, err := c.documentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

// Update replaces a document's editable fields
// @Summary Update document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body request.UpdateDocumentRequest true "Changes"
// @Success 200 {object} response.DocumentResponse
// @Router /documents/{id} [put]
func (c *DocumentController) Update(ctx *gin.Context) {
	var req request.UpdateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	doc, err := c.documentService.Update(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

// Delete removes a document
// @Summary Delete document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (c *DocumentController) Delete(ctx *gin.Context) {
	if err := c.documentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
