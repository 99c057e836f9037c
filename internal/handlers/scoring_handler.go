package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type ScoringHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewScoringHandler(responseService services.ResponseService, logger utils.Logger) *ScoringHandler {
	return &ScoringHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// CalculateScore scores posted answers against a posted question list without storing anything
// @Summary Calculate score
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body services.CalculateScoreRequest true "Questions and answers"
// @Success 200 {object} scoring.Result
// @Failure 400 {object} ErrorResponse
// @Router /scoring/calculate [post]
func (h *ScoringHandler) CalculateScore(c *gin.Context) {
	var req services.CalculateScoreRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.responseService.Calculate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
