package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/scoring"
	"github.com/seusdados/crm-service/internal/templating"
)

// ===== QUESTIONNAIRE DTOs =====

type QuestionInput struct {
	Text        string              `json:"text" validate:"required"`
	Type        models.QuestionType `json:"type" validate:"required,question_type"`
	Options     []string            `json:"options"`
	Required    bool                `json:"required"`
	ScoreConfig json.RawMessage     `json:"score_config"`
}

type SectionInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"dive"`
}

type CreateQuestionnaireRequest struct {
	Name        string                     `json:"name" validate:"required,max=200"`
	Description *string                    `json:"description" validate:"omitempty,max=2000"`
	Category    string                     `json:"category" validate:"max=100"`
	Status      models.QuestionnaireStatus `json:"status" validate:"omitempty,questionnaire_status"`
	Sections    []SectionInput             `json:"sections" validate:"dive"`
}

// UpdateQuestionnaireRequest replaces the structure only when Sections is non-nil.
type UpdateQuestionnaireRequest struct {
	Name        *string                     `json:"name" validate:"omitempty,max=200"`
	Description *string                     `json:"description" validate:"omitempty,max=2000"`
	Category    *string                     `json:"category" validate:"omitempty,max=100"`
	Status      *models.QuestionnaireStatus `json:"status" validate:"omitempty,questionnaire_status"`
	Sections    []SectionInput              `json:"sections" validate:"omitempty,dive"`
}

type QuestionnaireListResponse struct {
	Questionnaires []*models.Questionnaire `json:"questionnaires"`
	Total          int64                   `json:"total"`
	Limit          int                     `json:"limit"`
	Offset         int                     `json:"offset"`
}

// ===== RESPONSE DTOs =====

type SubmitResponseRequest struct {
	QuestionnaireID uuid.UUID       `json:"questionnaire_id" validate:"required"`
	RespondentName  string          `json:"respondent_name" validate:"max=200"`
	RespondentEmail string          `json:"respondent_email" validate:"omitempty,email"`
	Answers         scoring.Answers `json:"answers" validate:"required"`
}

// UpdateResponseRequest overlays answers onto a partial response. A null
// value clears the stored answer.
type UpdateResponseRequest struct {
	RespondentName  *string         `json:"respondent_name" validate:"omitempty,max=200"`
	RespondentEmail *string         `json:"respondent_email" validate:"omitempty,email"`
	Answers         scoring.Answers `json:"answers" validate:"required"`
}

type ResponseListResponse struct {
	Responses []*models.QuestionnaireResponse `json:"responses"`
	Total     int64                           `json:"total"`
	Limit     int                             `json:"limit"`
	Offset    int                             `json:"offset"`
}

type ConvertLeadRequest struct {
	LeadSource string `json:"lead_source"`
}

type ConvertLeadResult struct {
	ClientID    uuid.UUID `json:"client_id"`
	IsNewClient bool      `json:"is_new_client"`
}

// CalculateQuestion is a question posted to the stateless scoring endpoint.
type CalculateQuestion struct {
	ID          string               `json:"id" validate:"required"`
	Type        scoring.QuestionType `json:"type" validate:"required,question_type"`
	Options     []string             `json:"options"`
	Required    bool                 `json:"required"`
	ScoreConfig json.RawMessage      `json:"score_config"`
}

type CalculateScoreRequest struct {
	Questions []CalculateQuestion `json:"questions" validate:"required,dive"`
	Answers   scoring.Answers     `json:"answers"`
}

// ===== DOCUMENT DTOs =====

type CreateTemplateRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"max=50"`
	Description *string `json:"description"`
	ContentHTML string  `json:"content_html" validate:"required"`
}

type UpdateTemplateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Description *string `json:"description"`
	ContentHTML *string `json:"content_html" validate:"omitempty,min=1"`
	IsActive    *bool   `json:"is_active"`
}

type TemplateListResponse struct {
	Templates []*models.DocumentTemplate `json:"templates"`
	Total     int64                      `json:"total"`
	Limit     int                        `json:"limit"`
	Offset    int                        `json:"offset"`
}

type ResolveTemplateRequest struct {
	Body           string            `json:"body" validate:"required"`
	Values         map[string]string `json:"values"`
	ComputedFields *bool             `json:"computed_fields"`
}

type GenerateDocumentRequest struct {
	TemplateID   uuid.UUID         `json:"template_id" validate:"required"`
	ClientID     *uuid.UUID        `json:"client_id"`
	DocumentType string            `json:"document_type" validate:"max=50"`
	CustomValues map[string]string `json:"custom_values"`
	AutoFill     *bool             `json:"auto_fill"`
}

// autoFill defaults to true when the caller omits it.
func (r *GenerateDocumentRequest) autoFill() bool {
	return r.AutoFill == nil || *r.AutoFill
}

type ClientListResponse struct {
	Clients []*models.Client `json:"clients"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type DocumentListResponse struct {
	Documents []*models.GeneratedDocument `json:"documents"`
	Total     int64                       `json:"total"`
	Limit     int                         `json:"limit"`
	Offset    int                         `json:"offset"`
}

type DocumentPreview struct {
	TemplateID           uuid.UUID         `json:"template_id"`
	Content              string            `json:"content"`
	Values               map[string]string `json:"values"`
	MissingFields        []string          `json:"missing_fields"`
	CompletionPercentage int               `json:"completion_percentage"`
	IsComplete           bool              `json:"is_complete"`
}

func newDocumentPreview(templateID uuid.UUID, result *templating.Result) *DocumentPreview {
	return &DocumentPreview{
		TemplateID:           templateID,
		Content:              result.ResolvedBody,
		Values:               result.Values,
		MissingFields:        result.UnresolvedFields,
		CompletionPercentage: result.CompletionPercentage(),
		IsComplete:           result.IsComplete(),
	}
}

// ===== IMPORT / EXPORT DTOs =====

type ImportQuestionnaireRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=200"`
	Description *string `json:"description" form:"description"`
	Category    string  `json:"category" form:"category" validate:"max=100"`
}

// ExportFile is a generated file ready to be streamed to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
