package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type TemplateHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewTemplateHandler(documentService services.DocumentService, logger utils.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// CreateTemplate stores a document template and detects its fields
// @Summary Create template
// @Tags templates
// @Accept json
// @Produce json
// @Param template body services.CreateTemplateRequest true "Template"
// @Success 201 {object} models.DocumentTemplate
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	h.LogRequest(c, "Creating template")

	var req services.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.documentService.CreateTemplate(c.Request.Context(), &req, h.getUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// @Summary List templates
// @Tags templates
// @Param category query string false "Category"
// @Param active query bool false "Only active or inactive templates"
// @Success 200 {object} services.TemplateListResponse
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	limit, offset := parsePagination(c)
	result, err := h.documentService.ListTemplates(c.Request.Context(), repositories.TemplateFilters{
		Category: c.Query("category"),
		Active:   parseBoolQuery(c, "active"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Get template
// @Tags templates
// @Param id path string true "Template ID"
// @Success 200 {object} models.DocumentTemplate
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	template, err := h.documentService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// @Summary Update template
// @Tags templates
// @Param id path string true "Template ID"
// @Param template body services.UpdateTemplateRequest true "Changes"
// @Success 200 {object} models.DocumentTemplate
// @Router /templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Updating template", "template_id", id)

	var req services.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.documentService.UpdateTemplate(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DetectFields rescans the template body for placeholders
// @Summary Detect template fields
// @Tags templates
// @Param id path string true "Template ID"
// @Success 200 {array} templating.DetectedField
// @Router /templates/{id}/detect-fields [post]
func (h *TemplateHandler) DetectFields(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	fields, err := h.documentService.DetectFields(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

// ResolveTemplate substitutes values into a posted body without storing anything
// @Summary Resolve template
// @Tags templates
// @Param request body services.ResolveTemplateRequest true "Body and values"
// @Success 200 {object} templating.Result
// @Router /templates/resolve [post]
func (h *TemplateHandler) ResolveTemplate(c *gin.Context) {
	var req services.ResolveTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.documentService.ResolveTemplate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
