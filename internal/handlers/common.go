package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/templating"
	"github.com/seusdados/crm-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.getUserID(c)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.getUserID(c)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

func (h *BaseHandler) getUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// respondError writes a consistent error body
func (h *BaseHandler) respondError(c *gin.Context, status int, message, code string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Message: message,
		Details: details,
		Code:    code,
	})
}

// handleServiceError maps service errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.respondError(c, http.StatusBadRequest, "Validation failed", "validation_failed", validationErrors)
		return
	}

	var invalidTemplate *templating.InvalidTemplateError
	if errors.As(err, &invalidTemplate) {
		h.respondError(c, http.StatusBadRequest, "Invalid template", "invalid_template", invalidTemplate.Reason)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.respondError(c, http.StatusUnprocessableEntity, businessRuleError.Message, "business_rule", map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		h.respondError(c, http.StatusNotFound, err.Error(), "not_found", nil)
	case services.IsValidation(err):
		h.respondError(c, http.StatusBadRequest, err.Error(), "bad_request", nil)
	case services.IsConflict(err):
		h.respondError(c, http.StatusConflict, err.Error(), "conflict", nil)
	case services.IsUnavailable(err):
		h.respondError(c, http.StatusServiceUnavailable, err.Error(), "unavailable", nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, "Unauthorized", "unauthorized", nil)
	default:
		h.LogError(c, err, "Unhandled service error")
		h.respondError(c, http.StatusInternalServerError, "Internal server error", "internal_error", nil)
	}
}

// HealthCheck reports that the process is serving requests
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "crm-service",
	})
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck reports whether the database answers within two seconds
func ReadinessCheck(pinger Pinger, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			utils.GetLoggerFromContext(c, logger).Warn("Readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "ok",
		})
	}
}
