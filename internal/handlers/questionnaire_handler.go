package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

const maxImportSize = 10 << 20

type QuestionnaireHandler struct {
	BaseHandler
	questionnaireService services.QuestionnaireService
	responseService      services.ResponseService
	importExportService  services.ImportExportService
}

func NewQuestionnaireHandler(
	questionnaireService services.QuestionnaireService,
	responseService services.ResponseService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		BaseHandler:          NewBaseHandler(logger),
		questionnaireService: questionnaireService,
		responseService:      responseService,
		importExportService:  importExportService,
	}
}

// CreateQuestionnaire creates a questionnaire with its sections and questions
// @Summary Create questionnaire
// @Tags questionnaires
// @Accept json
// @Produce json
// @Param questionnaire body services.CreateQuestionnaireRequest true "Questionnaire definition"
// @Success 201 {object} models.Questionnaire
// @Failure 400 {object} ErrorResponse
// @Router /questionnaires [post]
func (h *QuestionnaireHandler) CreateQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Creating questionnaire")

	var req services.CreateQuestionnaireRequest
	if !bindJSON(c, &req) {
		return
	}

	questionnaire, err := h.questionnaireService.Create(c.Request.Context(), &req, h.getUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, questionnaire)
}

// ListQuestionnaires lists questionnaires with optional status, category and search filters
// @Summary List questionnaires
// @Tags questionnaires
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param status query string false "draft, active or archived"
// @Success 200 {object} services.QuestionnaireListResponse
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) ListQuestionnaires(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.QuestionnaireFilters{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}
	if status := c.Query("status"); status != "" {
		s := models.QuestionnaireStatus(status)
		filters.Status = &s
	}

	result, err := h.questionnaireService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetQuestionnaire returns the full definition in display order
// @Summary Get questionnaire
// @Tags questionnaires
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} models.Questionnaire
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id} [get]
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	questionnaire, err := h.questionnaireService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questionnaire)
}

// UpdateQuestionnaire changes metadata and optionally replaces the structure
// @Summary Update questionnaire
// @Tags questionnaires
// @Accept json
// @Produce json
// @Param id path string true "Questionnaire ID"
// @Param questionnaire body services.UpdateQuestionnaireRequest true "Changes"
// @Success 200 {object} models.Questionnaire
// @Failure 409 {object} ErrorResponse
// @Router /questionnaires/{id} [put]
func (h *QuestionnaireHandler) UpdateQuestionnaire(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Updating questionnaire", "questionnaire_id", id)

	var req services.UpdateQuestionnaireRequest
	if !bindJSON(c, &req) {
		return
	}

	questionnaire, err := h.questionnaireService.Update(c.Request.Context(), id, &req, h.getUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questionnaire)
}

// ArchiveQuestionnaire stops a questionnaire from accepting responses
// @Summary Archive questionnaire
// @Tags questionnaires
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} SuccessResponse
// @Router /questionnaires/{id}/archive [post]
func (h *QuestionnaireHandler) ArchiveQuestionnaire(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	h.LogRequest(c, "Archiving questionnaire", "questionnaire_id", id)

	if err := h.questionnaireService.Archive(c.Request.Context(), id, h.getUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Questionnaire archived"})
}

// GetQuestionnaireStats returns aggregate scores for the questionnaire's responses
// @Summary Questionnaire response statistics
// @Tags questionnaires
// @Param id path string true "Questionnaire ID"
// @Success 200 {object} repositories.ResponseStats
// @Router /questionnaires/{id}/stats [get]
func (h *QuestionnaireHandler) GetQuestionnaireStats(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.responseService.Stats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ImportQuestionnaire creates a questionnaire from an uploaded xlsx, csv or json file
// @Summary Import questionnaire
// @Tags questionnaires
// @Accept multipart/form-data
// @Param file formData file true "Questionnaire file"
// @Param name formData string true "Questionnaire name"
// @Success 201 {object} models.ImportSummary
// @Failure 422 {object} models.ImportSummary
// @Router /questionnaires/import [post]
func (h *QuestionnaireHandler) ImportQuestionnaire(c *gin.Context) {
	h.LogRequest(c, "Importing questionnaire")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "File is required", "invalid_payload", err.Error())
		return
	}
	if fileHeader.Size > maxImportSize {
		h.respondError(c, http.StatusRequestEntityTooLarge, "File is too large", "file_too_large", map[string]int64{"max_bytes": maxImportSize})
		return
	}

	var req services.ImportQuestionnaireRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request payload", "invalid_payload", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		h.respondError(c, http.StatusBadRequest, "Could not read uploaded file", "invalid_payload", nil)
		return
	}
	defer file.Close()

	summary, err := h.importExportService.ImportQuestionnaire(c.Request.Context(), file, fileHeader.Filename, &req, h.getUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if summary.Status != models.ImportCompleted {
		c.JSON(http.StatusUnprocessableEntity, summary)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ExportResponses streams every response of a questionnaire as xlsx or csv
// @Summary Export responses
// @Tags questionnaires
// @Param id path string true "Questionnaire ID"
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} file
// @Router /questionnaires/{id}/responses/export [get]
func (h *QuestionnaireHandler) ExportResponses(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	dateFrom, ok := parseTimeQuery(c, "date_from")
	if !ok {
		return
	}
	dateTo, ok := parseTimeQuery(c, "date_to")
	if !ok {
		return
	}

	file, err := h.importExportService.ExportResponses(c.Request.Context(), id, models.ExportRequest{
		Format:   models.ExportFormat(c.Query("format")),
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendFile(c, file)
}

func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
