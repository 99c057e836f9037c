package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error {
	if err := r.helpers.getDB(tx).WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QuestionnaireResponse, error) {
	var response models.QuestionnaireResponse
	err := r.helpers.getDB(tx).WithContext(ctx).
		Preload("Questionnaire").
		First(&response, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) Update(ctx context.Context, tx *gorm.DB, response *models.QuestionnaireResponse) error {
	return r.helpers.getDB(tx).WithContext(ctx).
		Omit("Questionnaire").
		Save(response).Error
}

func (r *ResponsePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResponseFilters) ([]*models.QuestionnaireResponse, int64, error) {
	query := r.applyFilters(r.helpers.getDB(tx).WithContext(ctx).Model(&models.QuestionnaireResponse{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var responses []*models.QuestionnaireResponse
	err := r.helpers.ApplyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset).
		Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r *ResponsePostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID) (*repositories.ResponseStats, error) {
	var stats repositories.ResponseStats
	err := r.helpers.getDB(tx).WithContext(ctx).
		Model(&models.QuestionnaireResponse{}).
		Select(`COUNT(*) AS total_responses,
			COUNT(*) FILTER (WHERE completion_status = ?) AS completed_responses,
			COALESCE(AVG(calculated_score), 0) AS average_score,
			COALESCE(AVG(completion_percentage), 0) AS average_completion,
			COALESCE(MAX(calculated_score), 0) AS highest_score,
			COALESCE(MIN(calculated_score), 0) AS lowest_score,
			COUNT(*) FILTER (WHERE lead_converted) AS converted_leads`, models.ResponseCompleted).
		Where("questionnaire_id = ?", questionnaireID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute response stats: %w", err)
	}
	return &stats, nil
}

func (r *ResponsePostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.QuestionnaireID != nil {
		query = query.Where("questionnaire_id = ?", *filters.QuestionnaireID)
	}
	if filters.Status != nil {
		query = query.Where("completion_status = ?", *filters.Status)
	}
	if filters.RespondentEmail != "" {
		query = query.Where("respondent_email = ?", filters.RespondentEmail)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
