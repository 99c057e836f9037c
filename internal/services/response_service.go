package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/errors"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/scoring"
	"github.com/seusdados/crm-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultLeadSource = "questionnaire"

type responseService struct {
	repo           repositories.Repository
	questionnaires QuestionnaireService
	publisher      events.EventPublisher
	validator      *validator.Validator
	logger         *ServiceLogger
	now            func() time.Time
}

func NewResponseService(repo repositories.Repository, questionnaires QuestionnaireService, publisher events.EventPublisher, validator *validator.Validator, logger *ServiceLogger) ResponseService {
	return &responseService{
		repo:           repo,
		questionnaires: questionnaires,
		publisher:      publisher,
		validator:      validator,
		logger:         logger,
		now:            time.Now,
	}
}

// Submit scores and stores a new response. Scores are always computed here;
// nothing the caller sends about scores is trusted.
func (s *responseService) Submit(ctx context.Context, req *SubmitResponseRequest) (result *models.QuestionnaireResponse, err error) {
	op := s.logger.WithOperation(ctx, "response.submit", req.RespondentEmail)
	defer func() { op.LogResult(responseID(result), "response", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questionnaire, err := s.questionnaires.GetByID(ctx, req.QuestionnaireID)
	if err != nil {
		return nil, err
	}
	if questionnaire.Status == models.QuestionnaireArchived {
		return nil, ErrQuestionnaireArchived
	}

	response := &models.QuestionnaireResponse{
		QuestionnaireID: questionnaire.ID,
		RespondentName:  strings.TrimSpace(req.RespondentName),
		RespondentEmail: strings.TrimSpace(req.RespondentEmail),
	}
	if err := s.applyScore(response, questionnaire, req.Answers); err != nil {
		return nil, err
	}

	if err := s.repo.Response().Create(ctx, nil, response); err != nil {
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	s.publishSubmitted(ctx, response)
	return response, nil
}

// Update overlays answers onto a partial response and rescores it.
func (s *responseService) Update(ctx context.Context, id uuid.UUID, req *UpdateResponseRequest) (result *models.QuestionnaireResponse, err error) {
	op := s.logger.WithOperation(ctx, "response.update", "")
	defer func() { op.LogResult(id.String(), "response", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	response, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if response.IsLocked() {
		return nil, ErrResponseLocked
	}

	questionnaire, err := s.questionnaires.GetByID(ctx, response.QuestionnaireID)
	if err != nil {
		return nil, err
	}

	answers, err := decodeAnswers(response.Answers)
	if err != nil {
		return nil, err
	}
	for questionID, answer := range req.Answers {
		if answer == nil {
			delete(answers, questionID)
			continue
		}
		answers[questionID] = answer
	}

	if req.RespondentName != nil {
		response.RespondentName = strings.TrimSpace(*req.RespondentName)
	}
	if req.RespondentEmail != nil {
		response.RespondentEmail = strings.TrimSpace(*req.RespondentEmail)
	}
	if err := s.applyScore(response, questionnaire, answers); err != nil {
		return nil, err
	}

	if err := s.repo.Response().Update(ctx, nil, response); err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}

	s.publishSubmitted(ctx, response)
	return response, nil
}

// Recalculate recomputes the derived score fields from the stored answers.
// It is allowed on completed responses since the answers do not change.
func (s *responseService) Recalculate(ctx context.Context, id uuid.UUID) (result *models.QuestionnaireResponse, err error) {
	op := s.logger.WithOperation(ctx, "response.recalculate", "")
	defer func() { op.LogResult(id.String(), "response", err) }()

	response, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	questionnaire, err := s.questionnaires.GetByID(ctx, response.QuestionnaireID)
	if err != nil {
		return nil, err
	}
	answers, err := decodeAnswers(response.Answers)
	if err != nil {
		return nil, err
	}

	completedAt := response.CompletedAt
	if err := s.applyScore(response, questionnaire, answers); err != nil {
		return nil, err
	}
	if completedAt != nil && response.CompletedAt != nil {
		response.CompletedAt = completedAt
	}

	if err := s.repo.Response().Update(ctx, nil, response); err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}
	return response, nil
}

func (s *responseService) GetByID(ctx context.Context, id uuid.UUID) (*models.QuestionnaireResponse, error) {
	return s.load(ctx, id)
}

func (s *responseService) List(ctx context.Context, filters repositories.ResponseFilters) (*ResponseListResponse, error) {
	responses, total, err := s.repo.Response().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return &ResponseListResponse{
		Responses: responses,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *responseService) Stats(ctx context.Context, questionnaireID uuid.UUID) (*repositories.ResponseStats, error) {
	if _, err := s.repo.Questionnaire().GetByID(ctx, nil, questionnaireID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}

	stats, err := s.repo.Response().GetStats(ctx, nil, questionnaireID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ConvertToLead turns a response into a CRM lead. An existing client with
// the respondent's email gets the response appended to its notes instead.
func (s *responseService) ConvertToLead(ctx context.Context, id uuid.UUID, req *ConvertLeadRequest) (result *ConvertLeadResult, err error) {
	op := s.logger.WithOperation(ctx, "response.convert_lead", "")
	defer func() { op.LogResult(id.String(), "response", err) }()

	response, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if response.LeadConverted {
		return nil, ErrLeadAlreadyConverted
	}

	questionnaireName := ""
	if response.Questionnaire != nil {
		questionnaireName = response.Questionnaire.Name
	}
	source := defaultLeadSource
	if req != nil && strings.TrimSpace(req.LeadSource) != "" {
		source = strings.TrimSpace(req.LeadSource)
	}
	notes := leadNotes(response, questionnaireName)

	result = &ConvertLeadResult{}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var existing *models.Client
		if response.RespondentEmail != "" {
			client, err := s.repo.Client().GetByEmail(ctx, tx, response.RespondentEmail)
			if err != nil && !repositories.IsNotFoundError(err) {
				return err
			}
			existing = client
		}

		if existing != nil {
			if err := s.repo.Client().AppendNotes(ctx, tx, existing.ID, notes); err != nil {
				return err
			}
			result.ClientID = existing.ID
		} else {
			client := newLeadClient(response, fmt.Sprintf("%s: %s", source, questionnaireName), notes)
			if err := s.repo.Client().Create(ctx, tx, client); err != nil {
				return err
			}
			result.ClientID = client.ID
			result.IsNewClient = true
		}

		response.LeadConverted = true
		return s.repo.Response().Update(ctx, tx, response)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert lead: %w", err)
	}

	event := events.NewDomainEvent(events.EventLeadConverted, events.LeadConvertedEvent{
		ResponseID:      response.ID,
		QuestionnaireID: response.QuestionnaireID,
		ClientID:        result.ClientID,
		IsNewClient:     result.IsNewClient,
		Score:           response.CalculatedScore,
	}).ForSubject(response.QuestionnaireID.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish lead converted event", "response_id", id, "error", err)
	}
	return result, nil
}

// Calculate scores a posted definition. Rules are checked strictly here so
// authoring mistakes surface as validation errors instead of zero scores.
func (s *responseService) Calculate(ctx context.Context, req *CalculateScoreRequest) (*scoring.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var errs errors.ValidationErrors
	questions := make([]scoring.Question, 0, len(req.Questions))
	for i, in := range req.Questions {
		q := scoring.Question{
			ID:       in.ID,
			Type:     in.Type,
			Options:  in.Options,
			Required: in.Required,
		}
		field := fmt.Sprintf("questions[%d].score_config", i)

		rule, err := scoring.DecodeRule(in.Type, in.ScoreConfig)
		if err != nil {
			errs = append(errs, *errors.NewValidationErrorWithRule(field, err.Error(), "score_rule", string(in.ScoreConfig)))
			continue
		}
		q.Rule = rule
		if err := scoring.ValidateRule(q); err != nil {
			errs = append(errs, *errors.NewValidationErrorWithRule(field, err.Error(), "score_rule", string(in.ScoreConfig)))
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	result := scoring.ComputeScore(questions, req.Answers)
	return &result, nil
}

func (s *responseService) load(ctx context.Context, id uuid.UUID) (*models.QuestionnaireResponse, error) {
	response, err := s.repo.Response().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	return response, nil
}

// applyScore stores answers on the response and derives every score field from them.
func (s *responseService) applyScore(response *models.QuestionnaireResponse, questionnaire *models.Questionnaire, answers scoring.Answers) error {
	if answers == nil {
		answers = scoring.Answers{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	result := scoring.ComputeScore(questionnaire.ScoringQuestions(), answers)

	response.Answers = datatypes.JSON(raw)
	response.CalculatedScore = result.TotalScore
	response.MaxPossibleScore = result.MaxPossibleScore
	response.CompletionPercentage = result.CompletionPercentage
	response.CompletionStatus = models.ResponsePartial
	response.CompletedAt = nil
	if result.CompletionPercentage >= 100 {
		now := s.now()
		response.CompletionStatus = models.ResponseCompleted
		response.CompletedAt = &now
	}
	return nil
}

func (s *responseService) publishSubmitted(ctx context.Context, response *models.QuestionnaireResponse) {
	event := events.NewDomainEvent(events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		ResponseID:           response.ID,
		QuestionnaireID:      response.QuestionnaireID,
		RespondentEmail:      response.RespondentEmail,
		TotalScore:           response.CalculatedScore,
		MaxPossibleScore:     response.MaxPossibleScore,
		CompletionPercentage: response.CompletionPercentage,
		Completed:            response.CompletionStatus == models.ResponseCompleted,
	}).ForSubject(response.QuestionnaireID.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish response submitted event", "response_id", response.ID, "error", err)
	}
}

func decodeAnswers(raw datatypes.JSON) (scoring.Answers, error) {
	answers := scoring.Answers{}
	if len(raw) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode stored answers: %w", err)
	}
	return answers, nil
}

func leadNotes(response *models.QuestionnaireResponse, questionnaireName string) string {
	return fmt.Sprintf("Generated from questionnaire: %s\nScore: %.2f / %.2f\nAnswered at: %s",
		questionnaireName,
		response.CalculatedScore,
		response.MaxPossibleScore,
		response.CreatedAt.Format("02/01/2006 15:04"))
}

func newLeadClient(response *models.QuestionnaireResponse, leadSource, notes string) *models.Client {
	name := response.RespondentName
	if name == "" {
		name = response.RespondentEmail
	}
	if name == "" {
		name = "Lead " + response.ID.String()[:8]
	}

	client := &models.Client{
		CompanyName: name,
		Status:      models.ClientLead,
		LeadSource:  &leadSource,
		Notes:       &notes,
	}
	if response.RespondentName != "" {
		representative := response.RespondentName
		client.LegalRepresentativeName = &representative
	}
	if response.RespondentEmail != "" {
		email := response.RespondentEmail
		client.LegalRepresentativeEmail = &email
	}
	return client
}

func responseID(r *models.QuestionnaireResponse) string {
	if r == nil {
		return ""
	}
	return r.ID.String()
}
