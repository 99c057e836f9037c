package postgres

import (
	"context"
	"fmt"

	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db            *gorm.DB
	questionnaire repositories.QuestionnaireRepository
	response      repositories.ResponseRepository
	client        repositories.ClientRepository
	template      repositories.TemplateRepository
	fieldMapping  repositories.FieldMappingRepository
	document      repositories.DocumentRepository
}

// NewRepository wires every PostgreSQL repository around one connection pool.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:            db,
		questionnaire: NewQuestionnairePostgreSQL(db),
		response:      NewResponsePostgreSQL(db),
		client:        NewClientPostgreSQL(db),
		template:      NewTemplatePostgreSQL(db),
		fieldMapping:  NewFieldMappingPostgreSQL(db),
		document:      NewDocumentPostgreSQL(db),
	}
}

func (r *repository) Questionnaire() repositories.QuestionnaireRepository { return r.questionnaire }
func (r *repository) Response() repositories.ResponseRepository           { return r.response }
func (r *repository) Client() repositories.ClientRepository               { return r.client }
func (r *repository) Template() repositories.TemplateRepository           { return r.template }
func (r *repository) FieldMapping() repositories.FieldMappingRepository   { return r.fieldMapping }
func (r *repository) Document() repositories.DocumentRepository           { return r.document }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates the tables owned by this service.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Questionnaire{},
		&models.QuestionnaireSection{},
		&models.QuestionnaireQuestion{},
		&models.QuestionnaireResponse{},
		&models.Client{},
		&models.DocumentTemplate{},
		&models.FieldMapping{},
		&models.GeneratedDocument{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
