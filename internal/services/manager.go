package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/seusdados/crm-service/internal/cache"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/render"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/storage"
	"github.com/seusdados/crm-service/internal/validator"
)

// ServiceManager gives handlers access to every service.
type ServiceManager interface {
	Questionnaire() QuestionnaireService
	Response() ResponseService
	Document() DocumentService
	ImportExport() ImportExportService

	// Ping checks the database connection
	Ping(ctx context.Context) error
}

// Dependencies groups the infrastructure shared by the services. Renderer
// and Storage may be nil.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	CacheTTL  time.Duration
	Publisher events.EventPublisher
	Renderer  render.Renderer
	Storage   storage.DocumentStorage
	Validator *validator.Validator
	Logger    *slog.Logger
	Debug     bool
}

type serviceManager struct {
	repo          repositories.Repository
	questionnaire QuestionnaireService
	response      ResponseService
	document      DocumentService
	importExport  ImportExportService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	serviceLogger := func(component string) *ServiceLogger {
		return NewServiceLogger(deps.Logger, LogConfig{
			Service:     "crm-service",
			Component:   component,
			EnableDebug: deps.Debug,
		})
	}

	questionnaires := NewQuestionnaireService(deps.Repo, deps.Cache, deps.CacheTTL, deps.Publisher, deps.Validator, serviceLogger("questionnaire"))
	return &serviceManager{
		repo:          deps.Repo,
		questionnaire: questionnaires,
		response:      NewResponseService(deps.Repo, questionnaires, deps.Publisher, deps.Validator, serviceLogger("response")),
		document:      NewDocumentService(deps.Repo, deps.Publisher, deps.Renderer, deps.Storage, deps.Validator, serviceLogger("document")),
		importExport:  NewImportExportService(deps.Repo, questionnaires, deps.Validator, serviceLogger("import_export")),
	}
}

func (m *serviceManager) Questionnaire() QuestionnaireService { return m.questionnaire }
func (m *serviceManager) Response() ResponseService           { return m.response }
func (m *serviceManager) Document() DocumentService           { return m.document }
func (m *serviceManager) ImportExport() ImportExportService   { return m.importExport }

func (m *serviceManager) Ping(ctx context.Context) error { return m.repo.Ping(ctx) }
