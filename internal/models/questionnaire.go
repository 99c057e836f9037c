package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/scoring"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionnaireStatus string

const (
	QuestionnaireDraft    QuestionnaireStatus = "draft"
	QuestionnaireActive   QuestionnaireStatus = "active"
	QuestionnaireArchived QuestionnaireStatus = "archived"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionEmail          QuestionType = "email"
	QuestionNumber         QuestionType = "number"
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionBoolean        QuestionType = "boolean"
	QuestionScale          QuestionType = "scale"
	QuestionDropdown       QuestionType = "dropdown"
)

type Questionnaire struct {
	ID          uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string              `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string             `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Category    string              `json:"category" gorm:"size:100;index"`
	Status      QuestionnaireStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,questionnaire_status"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sections []QuestionnaireSection `json:"sections" gorm:"foreignKey:QuestionnaireID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

type QuestionnaireSection struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionnaireID uuid.UUID `json:"questionnaire_id" gorm:"type:uuid;not null;index"`
	Title           string    `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description     *string   `json:"description" gorm:"type:text"`
	Order           int       `json:"order" gorm:"column:section_order;not null"`

	Questions []QuestionnaireQuestion `json:"questions" gorm:"foreignKey:SectionID"`
}

type QuestionnaireQuestion struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	SectionID   uuid.UUID      `json:"section_id" gorm:"type:uuid;not null;index"`
	Text        string         `json:"text" gorm:"type:text;not null" validate:"required"`
	Type        QuestionType   `json:"type" gorm:"column:question_type;not null;size:30" validate:"required,question_type"`
	Options     datatypes.JSON `json:"options" gorm:"column:options_json;type:jsonb"`      // []string
	ScoreConfig datatypes.JSON `json:"score_config" gorm:"column:score_config_json;type:jsonb"` // see scoring.DecodeRule
	Required    bool           `json:"required" gorm:"default:false"`
	Order       int            `json:"order" gorm:"column:question_order;not null"`
}

// OptionList decodes the stored option labels. Malformed data yields nil.
func (q *QuestionnaireQuestion) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}

func (q *Questionnaire) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (s *QuestionnaireSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (q *QuestionnaireQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}

func (QuestionnaireSection) TableName() string {
	return "questionnaire_sections"
}

func (QuestionnaireQuestion) TableName() string {
	return "questionnaire_questions"
}

// ScoringQuestion converts the stored question into the scoring engine's
// representation. A malformed score config yields a nil rule and the decode error.
func (q *QuestionnaireQuestion) ScoringQuestion() (scoring.Question, error) {
	sq := scoring.Question{
		ID:       q.ID.String(),
		Text:     q.Text,
		Type:     scoring.QuestionType(q.Type),
		Options:  q.OptionList(),
		Required: q.Required,
	}
	rule, err := scoring.DecodeRule(sq.Type, q.ScoreConfig)
	if err != nil {
		return sq, err
	}
	sq.Rule = rule
	return sq, nil
}

// ScoringQuestions flattens every section in order. Questions whose score
// config cannot be decoded are kept without a rule so they score nothing.
func (q *Questionnaire) ScoringQuestions() []scoring.Question {
	var questions []scoring.Question
	for i := range q.Sections {
		for j := range q.Sections[i].Questions {
			sq, _ := q.Sections[i].Questions[j].ScoringQuestion()
			questions = append(questions, sq)
		}
	}
	return questions
}
