package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/scoring"
)

// Validator combines struct tag validation with questionnaire rules
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and returns the shared error type
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateQuestionnaire validates the questionnaire, its sections and every question's score rule
func (v *Validator) ValidateQuestionnaire(q *models.Questionnaire) error {
	var errs ValidationErrors
	if err := v.ValidateStruct(q); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}

	for i := range q.Sections {
		section := &q.Sections[i]
		if err := v.ValidateStruct(section); err != nil {
			for _, e := range ToValidationErrors(err) {
				e.Field = sectionField(i, e.Field)
				errs = append(errs, e)
			}
		}
		for j := range section.Questions {
			if err := v.ValidateStruct(&section.Questions[j]); err != nil {
				for _, e := range ToValidationErrors(err) {
					e.Field = questionField(i, j, e.Field)
					errs = append(errs, e)
				}
				continue
			}
			for _, e := range v.questionValidator.ValidateQuestion(&section.Questions[j]) {
				e.Field = questionField(i, j, e.Field)
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("questionnaire_status", validateQuestionnaireStatus)
	validate.RegisterValidation("export_format", validateExportFormat)

	// Report json names in error fields
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return scoring.QuestionType(fl.Field().String()).IsValid()
}

func validateQuestionnaireStatus(fl validator.FieldLevel) bool {
	switch models.QuestionnaireStatus(fl.Field().String()) {
	case models.QuestionnaireDraft, models.QuestionnaireActive, models.QuestionnaireArchived:
		return true
	}
	return false
}

func validateExportFormat(fl validator.FieldLevel) bool {
	switch models.ExportFormat(fl.Field().String()) {
	case models.ExportXLSX, models.ExportCSV:
		return true
	}
	return false
}
