package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionnairePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionnairePostgreSQL(db *gorm.DB) repositories.QuestionnaireRepository {
	return &QuestionnairePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores a questionnaire together with its sections and questions
func (q *QuestionnairePostgreSQL) Create(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error {
	db := q.helpers.getDB(tx)
	if questionnaire.Status == "" {
		questionnaire.Status = models.QuestionnaireDraft
	}
	if err := db.WithContext(ctx).Create(questionnaire).Error; err != nil {
		return fmt.Errorf("failed to create questionnaire: %w", err)
	}
	return nil
}

func (q *QuestionnairePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	err := q.helpers.getDB(tx).WithContext(ctx).
		First(&questionnaire, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &questionnaire, nil
}

// GetWithQuestions loads the full definition with sections and questions in display order
func (q *QuestionnairePostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	err := q.helpers.getDB(tx).WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("section_order ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&questionnaire, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	q.calculateComputedFields(&questionnaire)
	return &questionnaire, nil
}

func (q *QuestionnairePostgreSQL) Update(ctx context.Context, tx *gorm.DB, questionnaire *models.Questionnaire) error {
	return q.helpers.getDB(tx).WithContext(ctx).
		Model(questionnaire).
		Select("name", "description", "category", "status").
		Omit("Sections").
		Updates(questionnaire).Error
}

// ReplaceSections deletes the current sections and questions and inserts the given ones
func (q *QuestionnairePostgreSQL) ReplaceSections(ctx context.Context, tx *gorm.DB, questionnaireID uuid.UUID, sections []models.QuestionnaireSection) error {
	db := q.helpers.getDB(tx).WithContext(ctx)

	sectionIDs := db.Model(&models.QuestionnaireSection{}).
		Select("id").
		Where("questionnaire_id = ?", questionnaireID)
	if err := db.Where("section_id IN (?)", sectionIDs).Delete(&models.QuestionnaireQuestion{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if err := db.Where("questionnaire_id = ?", questionnaireID).Delete(&models.QuestionnaireSection{}).Error; err != nil {
		return fmt.Errorf("failed to delete sections: %w", err)
	}

	if len(sections) == 0 {
		return nil
	}
	for i := range sections {
		sections[i].QuestionnaireID = questionnaireID
	}
	if err := db.Create(&sections).Error; err != nil {
		return fmt.Errorf("failed to create sections: %w", err)
	}
	return nil
}

func (q *QuestionnairePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.QuestionnaireStatus) error {
	result := q.helpers.getDB(tx).WithContext(ctx).
		Model(&models.Questionnaire{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionnairePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionnaireFilters) ([]*models.Questionnaire, int64, error) {
	query := q.helpers.getDB(tx).WithContext(ctx).Model(&models.Questionnaire{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questionnaires []*models.Questionnaire
	err := q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, "created_at", "name").
		Find(&questionnaires).Error
	if err != nil {
		return nil, 0, err
	}

	return questionnaires, total, nil
}

func (q *QuestionnairePostgreSQL) HasResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := q.helpers.getDB(tx).WithContext(ctx).
		Model(&models.QuestionnaireResponse{}).
		Where("questionnaire_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (q *QuestionnairePostgreSQL) calculateComputedFields(questionnaire *models.Questionnaire) {
	count := 0
	for _, section := range questionnaire.Sections {
		count += len(section.Questions)
	}
	questionnaire.QuestionsCount = count
}
