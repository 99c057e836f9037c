package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates every store the services depend on.
type Repository interface {
	Questionnaire() QuestionnaireRepository
	Response() ResponseRepository
	Client() ClientRepository
	Template() TemplateRepository
	FieldMapping() FieldMappingRepository
	Document() DocumentRepository

	// WithTransaction runs fn inside a database transaction. The *gorm.DB
	// passed to fn must be forwarded as the tx argument of repository calls.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionnaireFilters struct {
	Status    *models.QuestionnaireStatus `json:"status" form:"status"`
	Category  string                      `json:"category" form:"category"`
	Search    string                      `json:"search" form:"search"`
	Limit     int                         `json:"limit" form:"limit"`
	Offset    int                         `json:"offset" form:"offset"`
	SortBy    string                      `json:"sort_by" form:"sort_by"`       // "created_at", "name"
	SortOrder string                      `json:"sort_order" form:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	QuestionnaireID *uuid.UUID               `json:"questionnaire_id" form:"questionnaire_id"`
	Status          *models.CompletionStatus `json:"status" form:"status"`
	RespondentEmail string                   `json:"respondent_email" form:"respondent_email"`
	DateFrom        *time.Time               `json:"date_from" form:"date_from"`
	DateTo          *time.Time               `json:"date_to" form:"date_to"`
	Limit           int                      `json:"limit" form:"limit"`
	Offset          int                      `json:"offset" form:"offset"`
}

type ClientFilters struct {
	Status *models.ClientStatus `json:"status" form:"status"`
	Search string               `json:"search" form:"search"`
	Limit  int                  `json:"limit" form:"limit"`
	Offset int                  `json:"offset" form:"offset"`
}

type TemplateFilters struct {
	Category string `json:"category" form:"category"`
	Active   *bool  `json:"active" form:"active"`
	Limit    int    `json:"limit" form:"limit"`
	Offset   int    `json:"offset" form:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ResponseStats struct {
	TotalResponses     int64   `json:"total_responses"`
	CompletedResponses int64   `json:"completed_responses"`
	AverageScore       float64 `json:"average_score"`
	AverageCompletion  float64 `json:"average_completion"`
	HighestScore       float64 `json:"highest_score"`
	LowestScore        float64 `json:"lowest_score"`
	ConvertedLeads     int64   `json:"converted_leads"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionnaireRepository interface {
	Create(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error)
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error) // sections and questions ordered
	Update(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error
	ReplaceSections(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID, sections []models.QuestionnaireSection) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.QuestionnaireStatus) error
	List(ctx context.Context, tx *gorm.DB, filters QuestionnaireFilters) ([]*models.Questionnaire, int64, error)
	HasResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionnaireResponse, error)
	Update(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error
	List(ctx context.Context, tx *gorm.DB, filters ResponseFilters) ([]*models.QuestionnaireResponse, int64, error)
	GetStats(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID) (*ResponseStats, error)
}

type ClientRepository interface {
	Create(ctx context.Context, tx *gorm.DB, client *models.Client) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Client, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Client, error)
	AppendNotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, notes string) error
	List(ctx context.Context, tx *gorm.DB, filters ClientFilters) ([]*models.Client, int64, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.DocumentTemplate, error)
	Update(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error
	List(ctx context.Context, tx *gorm.DB, filters TemplateFilters) ([]*models.DocumentTemplate, int64, error)
}

type FieldMappingRepository interface {
	ListActiveByTemplate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID) ([]*models.FieldMapping, error) // ordered by priority
}

type DocumentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, document *models.GeneratedDocument) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GeneratedDocument, error)
	UpdatePDFKey(ctx context.Context, tx *gorm.DB, id uuid.UUID, objectKey string) error
	ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, limit, offset int) ([]*models.GeneratedDocument, int64, error)
}
