package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// PreviewDocument resolves a template for a client without storing the result
// @Summary Preview document
// @Tags documents
// @Param request body services.GenerateDocumentRequest true "Template, client and values"
// @Success 200 {object} services.DocumentPreview
// @Router /documents/preview [post]
func (h *DocumentHandler) PreviewDocument(c *gin.Context) {
	var req services.GenerateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}

	preview, err := h.documentService.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// GenerateDocument resolves a template and stores the generated document
// @Summary Generate document
// @Tags documents
// @Param request body services.GenerateDocumentRequest true "Template, client and values"
// @Success 201 {object} models.GeneratedDocument
// @Router /documents [post]
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	var req services.GenerateDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Generating document", "template_id", req.TemplateID)

	document, err := h.documentService.Generate(c.Request.Context(), &req, h.getUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, document)
}

// @Summary Get document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 200 {object} models.GeneratedDocument
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, document)
}

// DownloadPDF renders the document to PDF, or returns the stored copy
// @Summary Download document PDF
// @Tags documents
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 503 {object} ErrorResponse
// @Router /documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Rendering document pdf", "document_id", id)

	file, err := h.documentService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendFile(c, file)
}
