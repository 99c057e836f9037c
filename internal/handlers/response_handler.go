package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse scores and stores a respondent's answers
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.SubmitResponseRequest true "Answers"
// @Success 201 {object} models.QuestionnaireResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	var req services.SubmitResponseRequest
	if !bindJSON(c, &req) {
		return
	}
	h.LogRequest(c, "Submitting response", "questionnaire_id", req.QuestionnaireID)

	response, err := h.responseService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// UpdateResponse overlays answers on a partial response and rescores it
// @Summary Update response
// @Tags responses
// @Param id path string true "Response ID"
// @Param response body services.UpdateResponseRequest true "Answers"
// @Success 200 {object} models.QuestionnaireResponse
// @Failure 409 {object} ErrorResponse
// @Router /responses/{id} [put]
func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateResponseRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.responseService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListResponses lists responses filtered by questionnaire, status, email and date
// @Summary List responses
// @Tags responses
// @Param questionnaire_id query string false "Questionnaire ID"
// @Param status query string false "partial or completed"
// @Success 200 {object} services.ResponseListResponse
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.ResponseFilters{
		RespondentEmail: c.Query("respondent_email"),
		Limit:           limit,
		Offset:          offset,
	}

	if qid := c.Query("questionnaire_id"); qid != "" {
		id, err := uuid.Parse(qid)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "Invalid questionnaire_id", "invalid_query", err.Error())
			return
		}
		filters.QuestionnaireID = &id
	}
	if status := c.Query("status"); status != "" {
		s := models.CompletionStatus(status)
		filters.Status = &s
	}

	var ok bool
	if filters.DateFrom, ok = parseTimeQuery(c, "date_from"); !ok {
		return
	}
	if filters.DateTo, ok = parseTimeQuery(c, "date_to"); !ok {
		return
	}

	result, err := h.responseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetResponse returns one response with its stored scores
// @Summary Get response
// @Tags responses
// @Param id path string true "Response ID"
// @Success 200 {object} models.QuestionnaireResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// RecalculateResponse rescores stored answers against the current definition
// @Summary Recalculate response
// @Tags responses
// @Param id path string true "Response ID"
// @Success 200 {object} models.QuestionnaireResponse
// @Router /responses/{id}/recalculate [post]
func (h *ResponseHandler) RecalculateResponse(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Recalculating response", "response_id", id)

	response, err := h.responseService.Recalculate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ConvertLead turns the respondent into a client lead
// @Summary Convert response to lead
// @Tags responses
// @Param id path string true "Response ID"
// @Param request body services.ConvertLeadRequest false "Lead source"
// @Success 200 {object} services.ConvertLeadResult
// @Failure 409 {object} ErrorResponse
// @Router /responses/{id}/convert-lead [post]
func (h *ResponseHandler) ConvertLead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Converting response to lead", "response_id", id)

	var req services.ConvertLeadRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.responseService.ConvertToLead(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
