package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientLead     ClientStatus = "lead"
)

// Client is the customer record whose attributes fill document templates.
type Client struct {
	ID                       uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyName              string       `json:"company_name" gorm:"not null;size:255;index"`
	CNPJ                     *string      `json:"cnpj" gorm:"column:cnpj;size:20"`
	LegalRepresentativeName  *string      `json:"legal_representative_name" gorm:"size:200"`
	LegalRepresentativeEmail *string      `json:"legal_representative_email" gorm:"size:255"`
	Address                  *string      `json:"address" gorm:"type:text"`
	City                     *string      `json:"city" gorm:"size:100"`
	State                    *string      `json:"state" gorm:"size:2"`
	Status                   ClientStatus `json:"status" gorm:"default:active;index"`
	LeadSource               *string      `json:"lead_source" gorm:"size:255"`
	Notes                    *string      `json:"notes" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type DocumentTemplate struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Category    string    `json:"category" gorm:"size:50;index"`
	Description *string   `json:"description" gorm:"type:text"`
	ContentHTML string    `json:"content_html" gorm:"type:text;not null" validate:"required"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`

	AutoDetectedFields datatypes.JSON `json:"auto_detected_fields" gorm:"type:jsonb"` // []templating.DetectedField

	CreatedBy string         `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// FieldMapping binds a template placeholder to a column of a source record.
type FieldMapping struct {
	ID                     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TemplateID             uuid.UUID `json:"template_id" gorm:"type:uuid;not null;index"`
	FieldName              string    `json:"field_name" gorm:"not null;size:100"`
	SourceTable            string    `json:"source_table" gorm:"not null;size:50"`
	SourceField            string    `json:"source_field" gorm:"not null;size:100"`
	TransformationFunction *string   `json:"transformation_function" gorm:"size:50"`
	Priority               int       `json:"mapping_priority" gorm:"column:mapping_priority;default:0"`
	IsActive               bool      `json:"is_active" gorm:"default:true"`
}

type GeneratedDocument struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TemplateID       uuid.UUID      `json:"template_id" gorm:"type:uuid;not null;index"`
	ClientID         *uuid.UUID     `json:"client_id" gorm:"type:uuid;index"`
	DocumentType     string         `json:"document_type" gorm:"size:50"`
	ProcessedContent string         `json:"processed_content" gorm:"type:text;not null"`
	FieldValues      datatypes.JSON `json:"field_values" gorm:"type:jsonb"` // field name -> substituted value
	MissingFields    datatypes.JSON `json:"missing_fields" gorm:"type:jsonb"`
	VerificationCode string         `json:"verification_code" gorm:"size:8;index"`
	DocumentNumber   string         `json:"document_number" gorm:"size:20"`
	PDFObjectKey     *string        `json:"pdf_object_key" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Template *DocumentTemplate `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Client   *Client           `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (t *DocumentTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (m *FieldMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (d *GeneratedDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (Client) TableName() string {
	return "clients"
}

func (DocumentTemplate) TableName() string {
	return "document_templates"
}

func (FieldMapping) TableName() string {
	return "field_mappings"
}

func (GeneratedDocument) TableName() string {
	return "generated_documents"
}
