package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type ClientHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewClientHandler(documentService services.DocumentService, logger utils.Logger) *ClientHandler {
	return &ClientHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// @Summary List clients
// @Tags clients
// @Param status query string false "active, inactive or lead"
// @Param search query string false "Company, representative or CNPJ"
// @Success 200 {object} services.ClientListResponse
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.ClientFilters{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if status := c.Query("status"); status != "" {
		s := models.ClientStatus(status)
		filters.Status = &s
	}

	result, err := h.documentService.ListClients(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListClientDocuments returns the documents generated for a client, newest first
// @Summary List client documents
// @Tags clients
// @Param id path string true "Client ID"
// @Success 200 {object} services.DocumentListResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{id}/documents [get]
func (h *ClientHandler) ListClientDocuments(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	result, err := h.documentService.ListClientDocuments(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
