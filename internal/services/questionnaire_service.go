package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/cache"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type questionnaireService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	cacheTTL  time.Duration
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
}

func NewQuestionnaireService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, publisher events.EventPublisher, validator *validator.Validator, logger *ServiceLogger) QuestionnaireService {
	return &questionnaireService{
		repo:      repo,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

func (s *questionnaireService) Create(ctx context.Context, req *CreateQuestionnaireRequest, userID string) (result *models.Questionnaire, err error) {
	op := s.logger.WithOperation(ctx, "questionnaire.create", userID)
	defer func() { op.LogResult(resourceID(result), "questionnaire", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sections, err := buildSections(req.Sections)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.QuestionnaireDraft
	}
	questionnaire := &models.Questionnaire{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      status,
		CreatedBy:   userID,
		Sections:    sections,
	}

	if err := s.validator.ValidateQuestionnaire(questionnaire); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Questionnaire().Create(ctx, tx, questionnaire)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %w", err)
	}

	questionnaire.QuestionsCount = countQuestions(questionnaire)
	return questionnaire, nil
}

// GetByID returns the full definition, reading through the cache.
func (s *questionnaireService) GetByID(ctx context.Context, id uuid.UUID) (*models.Questionnaire, error) {
	key := cache.QuestionnaireKey(id)

	var cached models.Questionnaire
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn(ctx, "questionnaire cache read failed", "questionnaire_id", id, "error", err)
	}

	questionnaire, err := s.repo.Questionnaire().GetWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}

	if err := s.cache.Set(ctx, key, questionnaire, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "questionnaire cache write failed", "questionnaire_id", id, "error", err)
	}
	return questionnaire, nil
}

func (s *questionnaireService) List(ctx context.Context, filters repositories.QuestionnaireFilters) (*QuestionnaireListResponse, error) {
	questionnaires, total, err := s.repo.Questionnaire().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}
	return &QuestionnaireListResponse{
		Questionnaires: questionnaires,
		Total:          total,
		Limit:          filters.Limit,
		Offset:         filters.Offset,
	}, nil
}

// Update changes metadata and, when sections are given, replaces the whole
// structure. The structure is frozen once responses exist because answers
// are keyed by question id.
func (s *questionnaireService) Update(ctx context.Context, id uuid.UUID, req *UpdateQuestionnaireRequest, userID string) (result *models.Questionnaire, err error) {
	op := s.logger.WithOperation(ctx, "questionnaire.update", userID)
	defer func() { op.LogResult(id.String(), "questionnaire", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questionnaire, err := s.repo.Questionnaire().GetWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	if questionnaire.Status == models.QuestionnaireArchived {
		return nil, ErrQuestionnaireArchived
	}

	if req.Name != nil {
		questionnaire.Name = *req.Name
	}
	if req.Description != nil {
		questionnaire.Description = req.Description
	}
	if req.Category != nil {
		questionnaire.Category = *req.Category
	}
	if req.Status != nil {
		questionnaire.Status = *req.Status
	}

	replaceStructure := req.Sections != nil
	if replaceStructure {
		hasResponses, err := s.repo.Questionnaire().HasResponses(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check responses: %w", err)
		}
		if hasResponses {
			return nil, ErrQuestionnaireNotEditable
		}
		sections, err := buildSections(req.Sections)
		if err != nil {
			return nil, err
		}
		questionnaire.Sections = sections
	}

	if err := s.validator.ValidateQuestionnaire(questionnaire); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Questionnaire().Update(ctx, tx, questionnaire); err != nil {
			return err
		}
		if replaceStructure {
			return s.repo.Questionnaire().ReplaceSections(ctx, tx, id, questionnaire.Sections)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update questionnaire: %w", err)
	}

	s.invalidate(ctx, id)
	questionnaire.QuestionsCount = countQuestions(questionnaire)
	return questionnaire, nil
}

func (s *questionnaireService) Archive(ctx context.Context, id uuid.UUID, userID string) (err error) {
	op := s.logger.WithOperation(ctx, "questionnaire.archive", userID)
	defer func() { op.LogResult(id.String(), "questionnaire", err) }()

	questionnaire, err := s.repo.Questionnaire().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionnaireNotFound
		}
		return fmt.Errorf("failed to load questionnaire: %w", err)
	}
	if questionnaire.Status == models.QuestionnaireArchived {
		return nil
	}

	if err := s.repo.Questionnaire().UpdateStatus(ctx, nil, id, models.QuestionnaireArchived); err != nil {
		return fmt.Errorf("failed to archive questionnaire: %w", err)
	}
	s.invalidate(ctx, id)

	event := events.NewDomainEvent(events.EventQuestionnaireArchived, events.QuestionnaireArchivedEvent{
		QuestionnaireID: id,
		Name:            questionnaire.Name,
		ArchivedBy:      userID,
	}).ForSubject(id.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish questionnaire archived event", "questionnaire_id", id, "error", err)
	}
	return nil
}

func (s *questionnaireService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.QuestionnaireKey(id)); err != nil {
		s.logger.Warn(ctx, "questionnaire cache invalidation failed", "questionnaire_id", id, "error", err)
	}
}

// buildSections converts request input into models, numbering sections and
// questions from 1 in the order given.
func buildSections(inputs []SectionInput) ([]models.QuestionnaireSection, error) {
	sections := make([]models.QuestionnaireSection, 0, len(inputs))
	for i, in := range inputs {
		section := models.QuestionnaireSection{
			Title:       in.Title,
			Description: in.Description,
			Order:       i + 1,
			Questions:   make([]models.QuestionnaireQuestion, 0, len(in.Questions)),
		}
		for j, q := range in.Questions {
			question, err := buildQuestion(q, j+1)
			if err != nil {
				return nil, err
			}
			section.Questions = append(section.Questions, question)
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func buildQuestion(in QuestionInput, order int) (models.QuestionnaireQuestion, error) {
	question := models.QuestionnaireQuestion{
		Text:     in.Text,
		Type:     in.Type,
		Required: in.Required,
		Order:    order,
	}
	if len(in.Options) > 0 {
		options, err := json.Marshal(in.Options)
		if err != nil {
			return question, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = datatypes.JSON(options)
	}
	if len(in.ScoreConfig) > 0 {
		question.ScoreConfig = datatypes.JSON(in.ScoreConfig)
	}
	return question, nil
}

func countQuestions(q *models.Questionnaire) int {
	count := 0
	for _, section := range q.Sections {
		count += len(section.Questions)
	}
	return count
}

func resourceID(q *models.Questionnaire) string {
	if q == nil {
		return ""
	}
	return q.ID.String()
}
