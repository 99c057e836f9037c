package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"gorm.io/gorm"
)

// ===== CLIENTS =====

type ClientPostgreSQL struct {
	helpers *SharedHelpers
}

func NewClientPostgreSQL(db *gorm.DB) repositories.ClientRepository {
	return &ClientPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *ClientPostgreSQL) Create(ctx context.Context, tx *gorm.DB, client *models.Client) error {
	if err := c.helpers.getDB(tx).WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByEmail matches the legal representative email case-insensitively
func (c *ClientPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Client, error) {
	var client models.Client
	err := c.helpers.getDB(tx).WithContext(ctx).
		Where("LOWER(legal_representative_email) = LOWER(?)", email).
		Order("created_at ASC").
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *ClientPostgreSQL) AppendNotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, notes string) error {
	return c.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("notes", gorm.Expr("CONCAT_WS(E'\\n\\n', notes, ?)", notes)).Error
}

func (c *ClientPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := c.helpers.getDB(tx).WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *ClientPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ClientFilters) ([]*models.Client, int64, error) {
	query := c.helpers.getDB(tx).WithContext(ctx).Model(&models.Client{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("company_name ILIKE ? OR legal_representative_name ILIKE ? OR cnpj LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []*models.Client
	if err := c.helpers.ApplyPagination(query.Order("company_name ASC"), filters.Limit, filters.Offset).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// ===== TEMPLATES =====

type TemplatePostgreSQL struct {
	helpers *SharedHelpers
}

func NewTemplatePostgreSQL(db *gorm.DB) repositories.TemplateRepository {
	return &TemplatePostgreSQL{helpers: NewSharedHelpers(db)}
}

func (t *TemplatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error {
	if err := t.helpers.getDB(tx).WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (t *TemplatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.DocumentTemplate, error) {
	var template models.DocumentTemplate
	if err := t.helpers.getDB(tx).WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, template *models.DocumentTemplate) error {
	return t.helpers.getDB(tx).WithContext(ctx).Save(template).Error
}

func (t *TemplatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TemplateFilters) ([]*models.DocumentTemplate, int64, error) {
	query := t.helpers.getDB(tx).WithContext(ctx).Model(&models.DocumentTemplate{})
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*models.DocumentTemplate
	if err := t.helpers.ApplyPagination(query.Order("name ASC"), filters.Limit, filters.Offset).Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// ===== FIELD MAPPINGS =====

type FieldMappingPostgreSQL struct {
	helpers *SharedHelpers
}

func NewFieldMappingPostgreSQL(db *gorm.DB) repositories.FieldMappingRepository {
	return &FieldMappingPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (f *FieldMappingPostgreSQL) ListActiveByTemplate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID) ([]*models.FieldMapping, error) {
	var mappings []*models.FieldMapping
	err := f.helpers.getDB(tx).WithContext(ctx).
		Where("template_id = ? AND is_active = ?", templateID, true).
		Order("mapping_priority ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// ===== GENERATED DOCUMENTS =====

type DocumentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewDocumentPostgreSQL(db *gorm.DB) repositories.DocumentRepository {
	return &DocumentPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (d *DocumentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, document *models.GeneratedDocument) error {
	if err := d.helpers.getDB(tx).WithContext(ctx).Omit("Template", "Client").Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (d *DocumentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GeneratedDocument, error) {
	var document models.GeneratedDocument
	err := d.helpers.getDB(tx).WithContext(ctx).
		Preload("Template").
		Preload("Client").
		First(&document, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (d *DocumentPostgreSQL) UpdatePDFKey(ctx context.Context, tx *gorm.DB, id uuid.UUID, objectKey string) error {
	result := d.helpers.getDB(tx).WithContext(ctx).
		Model(&models.GeneratedDocument{}).
		Where("id = ?", id).
		Update("pdf_object_key", objectKey)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *DocumentPostgreSQL) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, limit, offset int) ([]*models.GeneratedDocument, int64, error) {
	query := d.helpers.getDB(tx).WithContext(ctx).
		Model(&models.GeneratedDocument{}).
		Where("client_id = ?", clientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var documents []*models.GeneratedDocument
	if err := d.helpers.ApplyPagination(query.Order("created_at DESC"), limit, offset).Find(&documents).Error; err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}
