package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event on the bus
type EventType string

const (
	EventResponseSubmitted     EventType = "response.submitted"
	EventLeadConverted         EventType = "response.lead_converted"
	EventDocumentGenerated     EventType = "document.generated"
	EventQuestionnaireArchived EventType = "questionnaire.archived"
)

const (
	eventSource  = "crm-service"
	eventVersion = "1.0"
)

// DomainEvent is the envelope published for every event type. Subject is the
// aggregate the event belongs to; events sharing a subject keep their order.
type DomainEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Subject   string                 `json:"subject,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewDomainEvent wraps a payload in an envelope with a fresh ID
func NewDomainEvent(eventType EventType, data interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func (e *DomainEvent) ForSubject(subject string) *DomainEvent {
	e.Subject = subject
	return e
}

// PartitionKey is the subject, or the event id for events without one.
func (e *DomainEvent) PartitionKey() string {
	if e.Subject != "" {
		return e.Subject
	}
	return e.ID
}

// Payloads

type ResponseSubmittedEvent struct {
	ResponseID           uuid.UUID `json:"response_id"`
	QuestionnaireID      uuid.UUID `json:"questionnaire_id"`
	RespondentEmail      string    `json:"respondent_email,omitempty"`
	TotalScore           float64   `json:"total_score"`
	MaxPossibleScore     float64   `json:"max_possible_score"`
	CompletionPercentage int       `json:"completion_percentage"`
	Completed            bool      `json:"completed"`
}

type LeadConvertedEvent struct {
	ResponseID      uuid.UUID `json:"response_id"`
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	ClientID        uuid.UUID `json:"client_id"`
	IsNewClient     bool      `json:"is_new_client"`
	Score           float64   `json:"score"`
}

type DocumentGeneratedEvent struct {
	DocumentID       uuid.UUID  `json:"document_id"`
	TemplateID       uuid.UUID  `json:"template_id"`
	ClientID         *uuid.UUID `json:"client_id,omitempty"`
	DocumentNumber   string     `json:"document_number"`
	VerificationCode string     `json:"verification_code"`
	MissingFields    []string   `json:"missing_fields,omitempty"`
	GeneratedBy      string     `json:"generated_by,omitempty"`
}

type QuestionnaireArchivedEvent struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	Name            string    `json:"name"`
	ArchivedBy      string    `json:"archived_by,omitempty"`
}
