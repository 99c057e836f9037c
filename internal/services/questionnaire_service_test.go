package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/events"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sampleQuestionnaireRequest() *CreateQuestionnaireRequest {
	return &CreateQuestionnaireRequest{
		Name:     "LGPD maturity",
		Category: "compliance",
		Sections: []SectionInput{
			{
				Title: "Governance",
				Questions: []QuestionInput{
					{
						Text:        "Do you have a DPO?",
						Type:        models.QuestionBoolean,
						Required:    true,
						ScoreConfig: json.RawMessage(`{"true_value":10,"false_value":0}`),
					},
					{
						Text:        "Policy status",
						Type:        models.QuestionSingleChoice,
						Options:     []string{"None", "Draft", "Approved"},
						Required:    true,
						ScoreConfig: json.RawMessage(`{"options":{"None":0,"Draft":3,"Approved":5}}`),
					},
				},
			},
		},
	}
}

func TestQuestionnaireService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores draft with ordered questions", func(t *testing.T) {
		ts := newTestServices()
		ts.repo.questionnaires.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Questionnaire")).Return(nil)

		q, err := ts.questionnaires.Create(ctx, sampleQuestionnaireRequest(), "user-1")
		require.NoError(t, err)

		assert.Equal(t, models.QuestionnaireDraft, q.Status)
		assert.Equal(t, "user-1", q.CreatedBy)
		assert.Equal(t, 2, q.QuestionsCount)
		require.Len(t, q.Sections, 1)
		assert.Equal(t, 1, q.Sections[0].Order)
		assert.Equal(t, 1, q.Sections[0].Questions[0].Order)
		assert.Equal(t, 2, q.Sections[0].Questions[1].Order)
		assert.JSONEq(t, `["None","Draft","Approved"]`, string(q.Sections[0].Questions[1].Options))
		ts.repo.AssertExpectations(t)
	})

	t.Run("rejects scored option that is not offered", func(t *testing.T) {
		ts := newTestServices()
		req := sampleQuestionnaireRequest()
		req.Sections[0].Questions[1].ScoreConfig = json.RawMessage(`{"options":{"Unknown":5}}`)

		_, err := ts.questionnaires.Create(ctx, req, "user-1")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		ts.repo.questionnaires.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		ts := newTestServices()
		req := sampleQuestionnaireRequest()
		req.Name = ""

		_, err := ts.questionnaires.Create(ctx, req, "user-1")
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Fields(), "name")
	})
}

func TestQuestionnaireService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("reads through the cache", func(t *testing.T) {
		ts := newTestServices()
		id := uuid.New()
		ts.repo.questionnaires.On("GetWithQuestions", ctx, mock.Anything, id).
			Return(&models.Questionnaire{ID: id, Name: "Cached"}, nil).Once()

		first, err := ts.questionnaires.GetByID(ctx, id)
		require.NoError(t, err)
		second, err := ts.questionnaires.GetByID(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, "Cached", first.Name)
		assert.Equal(t, first.ID, second.ID)
		ts.repo.AssertExpectations(t)
	})

	t.Run("maps missing record", func(t *testing.T) {
		ts := newTestServices()
		id := uuid.New()
		ts.repo.questionnaires.On("GetWithQuestions", ctx, mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := ts.questionnaires.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
		assert.True(t, IsNotFound(err))
	})
}

func TestQuestionnaireService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("archived questionnaire cannot change", func(t *testing.T) {
		ts := newTestServices()
		id := uuid.New()
		ts.repo.questionnaires.On("GetWithQuestions", ctx, mock.Anything, id).
			Return(&models.Questionnaire{ID: id, Name: "Old", Status: models.QuestionnaireArchived}, nil)

		name := "New"
		_, err := ts.questionnaires.Update(ctx, id, &UpdateQuestionnaireRequest{Name: &name}, "user-1")
		assert.ErrorIs(t, err, ErrQuestionnaireArchived)
	})

	t.Run("structure is frozen once responses exist", func(t *testing.T) {
		ts := newTestServices()
		id := uuid.New()
		ts.repo.questionnaires.On("GetWithQuestions", ctx, mock.Anything, id).
			Return(&models.Questionnaire{ID: id, Name: "Old", Status: models.QuestionnaireActive}, nil)
		ts.repo.questionnaires.On("HasResponses", ctx, mock.Anything, id).Return(true, nil)

		_, err := ts.questionnaires.Update(ctx, id, &UpdateQuestionnaireRequest{
			Sections: sampleQuestionnaireRequest().Sections,
		}, "user-1")
		assert.ErrorIs(t, err, ErrQuestionnaireNotEditable)
		assert.True(t, IsConflict(err))
		ts.repo.questionnaires.AssertNotCalled(t, "ReplaceSections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("metadata change invalidates cache", func(t *testing.T) {
		ts := newTestServices()
		id := uuid.New()
		ts.repo.questionnaires.On("GetWithQuestions", ctx, mock.Anything, id).
			Return(&models.Questionnaire{ID: id, Name: "Old", Status: models.QuestionnaireDraft}, nil)
		ts.repo.questionnaires.On("Update", ctx, mock.Anything, mock.AnythingOfType("*models.Questionnaire")).Return(nil)

		_, err := ts.questionnaires.GetByID(ctx, id)
		require.NoError(t, err)

		name := "New"
		updated, err := ts.questionnaires.Update(ctx, id, &UpdateQuestionnaireRequest{Name: &name}, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)

		var cached models.Questionnaire
		assert.Error(t, ts.cache.Get(ctx, "questionnaire:"+id.String(), &cached))
		ts.repo.questionnaires.AssertNotCalled(t, "ReplaceSections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQuestionnaireService_Archive(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices()
	id := uuid.New()
	ts.repo.questionnaires.On("GetByID", ctx, mock.Anything, id).
		Return(&models.Questionnaire{ID: id, Name: "Survey", Status: models.QuestionnaireActive}, nil)
	ts.repo.questionnaires.On("UpdateStatus", ctx, mock.Anything, id, models.QuestionnaireArchived).Return(nil)

	require.NoError(t, ts.questionnaires.Archive(ctx, id, "user-1"))

	published := ts.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuestionnaireArchived, published[0].Type)
	data, ok := published[0].Data.(events.QuestionnaireArchivedEvent)
	require.True(t, ok)
	assert.Equal(t, id, data.QuestionnaireID)
	ts.repo.AssertExpectations(t)
}
