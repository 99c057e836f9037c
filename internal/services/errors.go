package services

import (
	"errors"
	"fmt"

	apperrors "github.com/seusdados/crm-service/internal/errors"
	"github.com/seusdados/crm-service/internal/templating"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Questionnaire specific errors
	ErrQuestionnaireNotFound    = errors.New("questionnaire not found")
	ErrQuestionnaireArchived    = errors.New("questionnaire is archived")
	ErrQuestionnaireNotEditable = errors.New("questionnaire structure cannot change after responses exist")

	// Response specific errors
	ErrResponseNotFound     = errors.New("response not found")
	ErrResponseLocked       = errors.New("response is complete and can no longer be changed")
	ErrLeadAlreadyConverted = errors.New("response was already converted into a lead")

	// Document specific errors
	ErrTemplateNotFound      = errors.New("template not found")
	ErrTemplateInactive      = errors.New("template is inactive")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrRenderingUnavailable  = errors.New("pdf rendering is not configured")
	ErrUnsupportedFileFormat = errors.New("unsupported file format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// NewValidationError wraps a single field failure in ValidationErrors.
func NewValidationError(field, message string, value interface{}) error {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionnaireNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrClientNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnsupportedFileFormat) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var ite *templating.InvalidTemplateError
	return errors.As(err, &ite)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrResponseLocked) ||
		errors.Is(err, ErrLeadAlreadyConverted) ||
		errors.Is(err, ErrQuestionnaireArchived) ||
		errors.Is(err, ErrQuestionnaireNotEditable) ||
		errors.Is(err, ErrTemplateInactive)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRenderingUnavailable)
}
