package models

import (
	"time"

	"github.com/google/uuid"
)

type ImportStatus string

const (
	ImportCompleted        ImportStatus = "completed"
	ImportValidationFailed ImportStatus = "validation_failed"
)

// ImportSummary reports the outcome of a questionnaire import.
type ImportSummary struct {
	QuestionnaireID  uuid.UUID               `json:"questionnaire_id"`
	Status           ImportStatus            `json:"status"`
	TotalRows        int                     `json:"total_rows"`
	SectionsCreated  int                     `json:"sections_created"`
	QuestionsCreated int                     `json:"questions_created"`
	Errors           []ImportValidationError `json:"errors"`
	Warnings         []string                `json:"warnings"`
	ProcessingTime   time.Duration           `json:"processing_time"`
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}
