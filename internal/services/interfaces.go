package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/scoring"
	"github.com/seusdados/crm-service/internal/templating"
)

type QuestionnaireService interface {
	Create(ctx context.Context, req *CreateQuestionnaireRequest, userID string) (*models.Questionnaire, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Questionnaire, error)
	List(ctx context.Context, filters repositories.QuestionnaireFilters) (*QuestionnaireListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateQuestionnaireRequest, userID string) (*models.Questionnaire, error)
	Archive(ctx context.Context, id uuid.UUID, userID string) error
}

type ResponseService interface {
	Submit(ctx context.Context, req *SubmitResponseRequest) (*models.QuestionnaireResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateResponseRequest) (*models.QuestionnaireResponse, error)
	Recalculate(ctx context.Context, id uuid.UUID) (*models.QuestionnaireResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.QuestionnaireResponse, error)
	List(ctx context.Context, filters repositories.ResponseFilters) (*ResponseListResponse, error)
	Stats(ctx context.Context, questionnaireID uuid.UUID) (*repositories.ResponseStats, error)
	ConvertToLead(ctx context.Context, id uuid.UUID, req *ConvertLeadRequest) (*ConvertLeadResult, error)

	// Calculate scores a posted definition without touching storage
	Calculate(ctx context.Context, req *CalculateScoreRequest) (*scoring.Result, error)
}

type DocumentService interface {
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest, userID string) (*models.DocumentTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error)
	ListTemplates(ctx context.Context, filters repositories.TemplateFilters) (*TemplateListResponse, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, req *UpdateTemplateRequest) (*models.DocumentTemplate, error)
	DetectFields(ctx context.Context, templateID uuid.UUID) ([]templating.DetectedField, error)

	// ResolveTemplate substitutes a posted body without touching storage
	ResolveTemplate(ctx context.Context, req *ResolveTemplateRequest) (*templating.Result, error)

	Preview(ctx context.Context, req *GenerateDocumentRequest) (*DocumentPreview, error)
	Generate(ctx context.Context, req *GenerateDocumentRequest, userID string) (*models.GeneratedDocument, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*models.GeneratedDocument, error)
	RenderPDF(ctx context.Context, id uuid.UUID) (*ExportFile, error)

	// Clients are the data source for auto-filled fields
	ListClients(ctx context.Context, filters repositories.ClientFilters) (*ClientListResponse, error)
	ListClientDocuments(ctx context.Context, clientID uuid.UUID, limit, offset int) (*DocumentListResponse, error)
}

type ImportExportService interface {
	ExportResponses(ctx context.Context, questionnaireID uuid.UUID, req models.ExportRequest) (*ExportFile, error)
	ImportQuestionnaire(ctx context.Context, reader io.Reader, filename string, req *ImportQuestionnaireRequest, userID string) (*models.ImportSummary, error)
}
