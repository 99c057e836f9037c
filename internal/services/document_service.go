package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/render"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/storage"
	"github.com/seusdados/crm-service/internal/templating"
	"github.com/seusdados/crm-service/internal/validator"
	"gorm.io/datatypes"
)

const pdfContentType = "application/pdf"

type documentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	renderer  render.Renderer
	storage   storage.DocumentStorage
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
	random    io.Reader
}

// NewDocumentService wires template resolution and document generation.
// renderer and documentStorage may be nil when PDF output is not configured.
func NewDocumentService(repo repositories.Repository, publisher events.EventPublisher, renderer render.Renderer, documentStorage storage.DocumentStorage, validator *validator.Validator, logger *ServiceLogger) DocumentService {
	return &documentService{
		repo:      repo,
		publisher: publisher,
		renderer:  renderer,
		storage:   documentStorage,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		random:    rand.Reader,
	}
}

func (s *documentService) resolveOptions() []templating.Option {
	return []templating.Option{templating.WithClock(s.now), templating.WithRandom(s.random)}
}

// ===== TEMPLATES =====

func (s *documentService) CreateTemplate(ctx context.Context, req *CreateTemplateRequest, userID string) (result *models.DocumentTemplate, err error) {
	op := s.logger.WithOperation(ctx, "template.create", userID)
	defer func() { op.LogResult(templateID(result), "template", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := checkTemplateBody(req.ContentHTML); err != nil {
		return nil, err
	}

	template := &models.DocumentTemplate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ContentHTML: req.ContentHTML,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if err := setDetectedFields(template); err != nil {
		return nil, err
	}

	if err := s.repo.Template().Create(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *documentService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.DocumentTemplate, error) {
	template, err := s.repo.Template().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return template, nil
}

func (s *documentService) ListTemplates(ctx context.Context, filters repositories.TemplateFilters) (*TemplateListResponse, error) {
	templates, total, err := s.repo.Template().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return &TemplateListResponse{
		Templates: templates,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *documentService) UpdateTemplate(ctx context.Context, id uuid.UUID, req *UpdateTemplateRequest) (*models.DocumentTemplate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Category != nil {
		template.Category = *req.Category
	}
	if req.Description != nil {
		template.Description = req.Description
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}
	if req.ContentHTML != nil {
		if err := checkTemplateBody(*req.ContentHTML); err != nil {
			return nil, err
		}
		template.ContentHTML = *req.ContentHTML
		if err := setDetectedFields(template); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Template().Update(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// DetectFields rescans the stored body and saves the detected fields on the template.
func (s *documentService) DetectFields(ctx context.Context, id uuid.UUID) ([]templating.DetectedField, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTemplateBody(template.ContentHTML); err != nil {
		return nil, err
	}

	fields := templating.Detect(template.ContentHTML)
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detected fields: %w", err)
	}
	template.AutoDetectedFields = datatypes.JSON(raw)

	if err := s.repo.Template().Update(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to store detected fields: %w", err)
	}
	return fields, nil
}

func (s *documentService) ResolveTemplate(ctx context.Context, req *ResolveTemplateRequest) (*templating.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	opts := s.resolveOptions()
	if req.ComputedFields != nil && !*req.ComputedFields {
		opts = append(opts, templating.WithoutComputedFields())
	}
	return templating.Resolve(req.Body, req.Values, opts...)
}

// ===== DOCUMENTS =====

func (s *documentService) Preview(ctx context.Context, req *GenerateDocumentRequest) (*DocumentPreview, error) {
	template, result, _, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return newDocumentPreview(template.ID, result), nil
}

// Generate resolves the template and stores the processed document.
// Unresolved fields are recorded, not rejected.
func (s *documentService) Generate(ctx context.Context, req *GenerateDocumentRequest, userID string) (result *models.GeneratedDocument, err error) {
	op := s.logger.WithOperation(ctx, "document.generate", userID)
	defer func() { op.LogResult(documentID(result), "document", err) }()

	template, resolved, client, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	fieldValues, err := json.Marshal(resolved.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode field values: %w", err)
	}
	missing, err := json.Marshal(resolved.UnresolvedFields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode missing fields: %w", err)
	}

	document := &models.GeneratedDocument{
		TemplateID:       template.ID,
		DocumentType:     req.DocumentType,
		ProcessedContent: resolved.ResolvedBody,
		FieldValues:      datatypes.JSON(fieldValues),
		MissingFields:    datatypes.JSON(missing),
		VerificationCode: resolved.Values[templating.FieldVerificationCode],
		DocumentNumber:   resolved.Values[templating.FieldDocumentNumber],
		CreatedBy:        userID,
	}
	if document.DocumentType == "" {
		document.DocumentType = template.Category
	}
	if client != nil {
		document.ClientID = &client.ID
	}
	if document.VerificationCode == "" {
		code, err := templating.VerificationCode(s.random)
		if err != nil {
			return nil, err
		}
		document.VerificationCode = code
	}
	if document.DocumentNumber == "" {
		document.DocumentNumber = templating.DocumentNumber(s.now())
	}

	if err := s.repo.Document().Create(ctx, nil, document); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	event := events.NewDomainEvent(events.EventDocumentGenerated, events.DocumentGeneratedEvent{
		DocumentID:       document.ID,
		TemplateID:       document.TemplateID,
		ClientID:         document.ClientID,
		DocumentNumber:   document.DocumentNumber,
		VerificationCode: document.VerificationCode,
		MissingFields:    resolved.UnresolvedFields,
		GeneratedBy:      userID,
	}).ForSubject(document.TemplateID.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish document generated event", "document_id", document.ID, "error", err)
	}
	return document, nil
}

func (s *documentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.GeneratedDocument, error) {
	document, err := s.repo.Document().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return document, nil
}

// RenderPDF returns the stored PDF when one exists, otherwise renders the
// processed content and stores the result.
func (s *documentService) RenderPDF(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	document, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	file := &ExportFile{
		Filename:    document.DocumentNumber + ".pdf",
		ContentType: pdfContentType,
	}

	if document.PDFObjectKey != nil && s.storage != nil {
		data, err := s.storage.Download(ctx, *document.PDFObjectKey)
		if err == nil {
			file.Data = data
			return file, nil
		}
		s.logger.Warn(ctx, "stored pdf unavailable, rendering again", "document_id", id, "error", err)
	}

	if s.renderer == nil {
		return nil, ErrRenderingUnavailable
	}
	data, err := s.renderer.RenderPDF(ctx, document.ProcessedContent)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	file.Data = data

	if s.storage != nil {
		key, err := s.storage.Upload(ctx, storage.DocumentKey(document.ID.String(), document.DocumentNumber), data, pdfContentType)
		if err != nil {
			s.logger.Warn(ctx, "failed to store rendered pdf", "document_id", id, "error", err)
			return file, nil
		}
		if err := s.repo.Document().UpdatePDFKey(ctx, nil, document.ID, key); err != nil {
			s.logger.Warn(ctx, "failed to record pdf key", "document_id", id, "error", err)
		}
	}
	return file, nil
}

func (s *documentService) ListClients(ctx context.Context, filters repositories.ClientFilters) (*ClientListResponse, error) {
	clients, total, err := s.repo.Client().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return &ClientListResponse{
		Clients: clients,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *documentService) ListClientDocuments(ctx context.Context, clientID uuid.UUID, limit, offset int) (*DocumentListResponse, error) {
	if _, err := s.repo.Client().GetByID(ctx, nil, clientID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	documents, total, err := s.repo.Document().ListByClient(ctx, nil, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return &DocumentListResponse{
		Documents: documents,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// resolve loads the template and client, assembles values and substitutes them.
func (s *documentService) resolve(ctx context.Context, req *GenerateDocumentRequest) (*models.DocumentTemplate, *templating.Result, *models.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, nil, err
	}

	template, err := s.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !template.IsActive {
		return nil, nil, nil, ErrTemplateInactive
	}

	values, client, err := s.buildFieldValues(ctx, template, req)
	if err != nil {
		return nil, nil, nil, err
	}

	result, err := templating.Resolve(template.ContentHTML, values, s.resolveOptions()...)
	if err != nil {
		return nil, nil, nil, err
	}
	return template, result, client, nil
}

func checkTemplateBody(body string) error {
	if !utf8.ValidString(body) {
		return &templating.InvalidTemplateError{Reason: "body is not valid UTF-8 text"}
	}
	return nil
}

func setDetectedFields(template *models.DocumentTemplate) error {
	raw, err := json.Marshal(templating.Detect(template.ContentHTML))
	if err != nil {
		return fmt.Errorf("failed to encode detected fields: %w", err)
	}
	template.AutoDetectedFields = datatypes.JSON(raw)
	return nil
}

func templateID(t *models.DocumentTemplate) string {
	if t == nil {
		return ""
	}
	return t.ID.String()
}

func documentID(d *models.GeneratedDocument) string {
	if d == nil {
		return ""
	}
	return d.ID.String()
}
