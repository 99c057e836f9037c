package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CompletionStatus string

const (
	ResponsePartial   CompletionStatus = "partial"
	ResponseCompleted CompletionStatus = "completed"
)

// QuestionnaireResponse is one respondent submission. CalculatedScore,
// MaxPossibleScore and CompletionPercentage are always derived from Answers.
type QuestionnaireResponse struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionnaireID uuid.UUID `json:"questionnaire_id" gorm:"type:uuid;not null;index"`
	RespondentName  string    `json:"respondent_name" gorm:"size:200"`
	RespondentEmail string    `json:"respondent_email" gorm:"size:255;index"`

	Answers datatypes.JSON `json:"answers" gorm:"column:responses_json;type:jsonb;not null"` // question id -> answer

	CalculatedScore      float64          `json:"calculated_score"`
	MaxPossibleScore     float64          `json:"max_possible_score"`
	CompletionPercentage int              `json:"completion_percentage"`
	CompletionStatus     CompletionStatus `json:"completion_status" gorm:"default:partial;index"`
	LeadConverted        bool             `json:"lead_converted" gorm:"default:false"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relations
	Questionnaire *Questionnaire `json:"questionnaire,omitempty" gorm:"foreignKey:QuestionnaireID"`
}

// IsLocked reports whether the response can no longer change.
func (r *QuestionnaireResponse) IsLocked() bool {
	return r.CompletionPercentage >= 100
}

func (r *QuestionnaireResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (QuestionnaireResponse) TableName() string {
	return "questionnaire_responses"
}
