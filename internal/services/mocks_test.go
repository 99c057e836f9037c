package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/cache"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository wires the per-entity mocks. WithTransaction runs fn with a nil tx.
type MockRepository struct {
	questionnaires *MockQuestionnaireRepository
	responses      *MockResponseRepository
	clients        *MockClientRepository
	templates      *MockTemplateRepository
	fieldMappings  *MockFieldMappingRepository
	documents      *MockDocumentRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		questionnaires: &MockQuestionnaireRepository{},
		responses:      &MockResponseRepository{},
		clients:        &MockClientRepository{},
		templates:      &MockTemplateRepository{},
		fieldMappings:  &MockFieldMappingRepository{},
		documents:      &MockDocumentRepository{},
	}
}

func (m *MockRepository) Questionnaire() repositories.QuestionnaireRepository { return m.questionnaires }
func (m *MockRepository) Response() repositories.ResponseRepository           { return m.responses }
func (m *MockRepository) Client() repositories.ClientRepository               { return m.clients }
func (m *MockRepository) Template() repositories.TemplateRepository           { return m.templates }
func (m *MockRepository) FieldMapping() repositories.FieldMappingRepository   { return m.fieldMappings }
func (m *MockRepository) Document() repositories.DocumentRepository           { return m.documents }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.questionnaires.AssertExpectations(t)
	m.responses.AssertExpectations(t)
	m.clients.AssertExpectations(t)
	m.templates.AssertExpectations(t)
	m.fieldMappings.AssertExpectations(t)
	m.documents.AssertExpectations(t)
}

// ===== QUESTIONNAIRES =====

type MockQuestionnaireRepository struct {
	mock.Mock
}

func (m *MockQuestionnaireRepository) Create(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error {
	args := m.Called(ctx, tx, questionnaire)
	return args.Error(0)
}

func (m *MockQuestionnaireRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Questionnaire), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionnaireRepository) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Questionnaire), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionnaireRepository) Update(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error {
	args := m.Called(ctx, tx, questionnaire)
	return args.Error(0)
}

func (m *MockQuestionnaireRepository) ReplaceSections(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID, sections []models.QuestionnaireSection) error {
	args := m.Called(ctx, tx, questionnaireID, sections)
	return args.Error(0)
}

func (m *MockQuestionnaireRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.QuestionnaireStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockQuestionnaireRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionnaireFilters) ([]*models.Questionnaire, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Questionnaire), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionnaireRepository) HasResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// ===== RESPONSES =====

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionnaireResponse, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.QuestionnaireResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResponseRepository) Update(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ResponseFilters) ([]*models.QuestionnaireResponse, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.QuestionnaireResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetStats(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID) (*repositories.ResponseStats, error) {
	args := m.Called(ctx, tx, questionnaireID)
	if v := args.Get(0); v != nil {
		return v.(*repositories.ResponseStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// ===== CLIENTS =====

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, tx *gorm.DB, client *models.Client) error {
	args := m.Called(ctx, tx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Client, error) {
	args := m.Called(ctx, tx, email)
	if v := args.Get(0); v != nil {
		return v.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClientRepository) AppendNotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, notes string) error {
	args := m.Called(ctx, tx, id, notes)
	return args.Error(0)
}

func (m *MockClientRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ClientFilters) ([]*models.Client, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.Client), args.Get(1).(int64), args.Error(2)
}

// ===== TEMPLATES =====

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error {
	args := m.Called(ctx, tx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.DocumentTemplate, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.DocumentTemplate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) Update(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error {
	args := m.Called(ctx, tx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.TemplateFilters) ([]*models.DocumentTemplate, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.DocumentTemplate), args.Get(1).(int64), args.Error(2)
}

// ===== FIELD MAPPINGS =====

type MockFieldMappingRepository struct {
	mock.Mock
}

func (m *MockFieldMappingRepository) ListActiveByTemplate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID) ([]*models.FieldMapping, error) {
	args := m.Called(ctx, tx, templateID)
	return args.Get(0).([]*models.FieldMapping), args.Error(1)
}

// ===== DOCUMENTS =====

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, tx *gorm.DB, document *models.GeneratedDocument) error {
	args := m.Called(ctx, tx, document)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GeneratedDocument, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.GeneratedDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) UpdatePDFKey(ctx context.Context, tx *gorm.DB, id uuid.UUID, objectKey string) error {
	args := m.Called(ctx, tx, id, objectKey)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, limit, offset int) ([]*models.GeneratedDocument, int64, error) {
	args := m.Called(ctx, tx, clientID, limit, offset)
	return args.Get(0).([]*models.GeneratedDocument), args.Get(1).(int64), args.Error(2)
}

// ===== TEST FIXTURES =====

func testLogger() *ServiceLogger {
	return NewServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), LogConfig{
		Service:   "crm-service",
		Component: "test",
	})
}

type testServices struct {
	repo           *MockRepository
	publisher      *events.MockEventPublisher
	cache          *cache.MemoryCache
	questionnaires QuestionnaireService
	responses      ResponseService
}

func newTestServices() *testServices {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(nil)
	memoryCache := cache.NewMemoryCache()
	v := validator.New()
	questionnaires := NewQuestionnaireService(repo, memoryCache, 0, publisher, v, testLogger())
	return &testServices{
		repo:           repo,
		publisher:      publisher,
		cache:          memoryCache,
		questionnaires: questionnaires,
		responses:      NewResponseService(repo, questionnaires, publisher, v, testLogger()),
	}
}
