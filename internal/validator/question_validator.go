package validator

import (
	"fmt"
	"strings"

	"github.com/seusdados/crm-service/internal/errors"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/scoring"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion checks options and the score configuration of one question
func (v *QuestionValidator) ValidateQuestion(q *models.QuestionnaireQuestion) ValidationErrors {
	var errs ValidationErrors

	if requiresOptions(q.Type) {
		options := q.OptionList()
		if len(options) == 0 {
			errs = append(errs, *errors.NewValidationErrorWithRule("options", "is required for choice questions", "required", nil))
		} else if dup := firstDuplicate(options); dup != "" {
			errs = append(errs, *errors.NewValidationErrorWithRule("options", fmt.Sprintf("contains duplicate option %q", dup), "unique", dup))
		}
	}

	sq, err := q.ScoringQuestion()
	if err != nil {
		errs = append(errs, *errors.NewValidationErrorWithRule("score_config", err.Error(), "score_rule", string(q.ScoreConfig)))
		return errs
	}
	if err := scoring.ValidateRule(sq); err != nil {
		errs = append(errs, *errors.NewValidationErrorWithRule("score_config", err.Error(), ruleTag(sq.Rule, err), string(q.ScoreConfig)))
	}

	return errs
}

func requiresOptions(t models.QuestionType) bool {
	switch t {
	case models.QuestionSingleChoice, models.QuestionMultipleChoice, models.QuestionDropdown:
		return true
	}
	return false
}

func firstDuplicate(options []string) string {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if seen[o] {
			return o
		}
		seen[o] = true
	}
	return ""
}

func ruleTag(rule scoring.Rule, err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not allowed"):
		return "score_rule"
	case strings.Contains(msg, "not offered"):
		return "score_options"
	}
	if _, ok := rule.(scoring.ScaleRule); ok {
		return "score_ranges"
	}
	return "score_rule"
}

func sectionField(section int, field string) string {
	return fmt.Sprintf("sections[%d].%s", section, field)
}

func questionField(section, question int, field string) string {
	return fmt.Sprintf("sections[%d].questions[%d].%s", section, question, field)
}
