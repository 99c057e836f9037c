// Package scoring computes questionnaire scores and completion percentages.
// It imports nothing from internal/ and performs no I/O, so it can be called
// concurrently from any request handler.
package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeTextarea       QuestionType = "textarea"
	TypeEmail          QuestionType = "email"
	TypeNumber         QuestionType = "number"
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeBoolean        QuestionType = "boolean"
	TypeScale          QuestionType = "scale"
	TypeDropdown       QuestionType = "dropdown"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{
	TypeText, TypeTextarea, TypeEmail, TypeNumber, TypeSingleChoice,
	TypeMultipleChoice, TypeBoolean, TypeScale, TypeDropdown,
}

// IsValid reports whether t belongs to the closed set of question types.
func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Rule is a per-question scoring rule. The concrete variants are
// BooleanRule, ScaleRule, ChoiceRule and MultiplierRule.
type Rule interface {
	isRule()
}

type BooleanRule struct {
	TrueValue  float64 `json:"true_value"`
	FalseValue float64 `json:"false_value"`
}

type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Score float64 `json:"score"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type ScaleRule struct {
	Ranges []Range `json:"ranges"`
}

// ChoiceRule maps option labels to scores. It serves single_choice,
// dropdown and multiple_choice questions.
type ChoiceRule struct {
	Scores map[string]float64 `json:"options"`
}

// MultiplierRule scores a numeric answer as value * Multiplier.
type MultiplierRule struct {
	Multiplier float64 `json:"multiplier"`
}

func (BooleanRule) isRule()    {}
func (ScaleRule) isRule()      {}
func (ChoiceRule) isRule()     {}
func (MultiplierRule) isRule() {}

// DecodeRule parses a stored score configuration using the question type as
// discriminator. Empty input and JSON null decode to a nil rule.
func DecodeRule(t QuestionType, raw []byte) (Rule, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, nil
	}

	switch t {
	case TypeBoolean:
		var r BooleanRule
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("invalid boolean score rule: %w", err)
		}
		return r, nil
	case TypeScale:
		var r ScaleRule
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("invalid scale score rule: %w", err)
		}
		return r, nil
	case TypeNumber:
		var probe struct {
			Ranges     []Range  `json:"ranges"`
			Multiplier *float64 `json:"multiplier"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("invalid number score rule: %w", err)
		}
		if len(probe.Ranges) > 0 {
			return ScaleRule{Ranges: probe.Ranges}, nil
		}
		if probe.Multiplier != nil {
			return MultiplierRule{Multiplier: *probe.Multiplier}, nil
		}
		return nil, nil
	case TypeSingleChoice, TypeMultipleChoice, TypeDropdown:
		var r ChoiceRule
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("invalid choice score rule: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("question type %q does not support scoring", t)
	}
}

// EncodeRule is the inverse of DecodeRule. A nil rule encodes to nil.
func EncodeRule(rule Rule) ([]byte, error) {
	if rule == nil {
		return nil, nil
	}
	return json.Marshal(rule)
}

// ValidateRule checks that a question's rule is well formed for its type.
// ComputeScore never calls it; it is meant for authoring.
func ValidateRule(q Question) error {
	if q.Rule == nil {
		return nil
	}

	switch r := q.Rule.(type) {
	case BooleanRule:
		if q.Type != TypeBoolean {
			return fmt.Errorf("question %s: boolean rule not allowed for type %s", q.ID, q.Type)
		}
	case ScaleRule:
		if q.Type != TypeScale && q.Type != TypeNumber {
			return fmt.Errorf("question %s: range rule not allowed for type %s", q.ID, q.Type)
		}
		ranges := append([]Range(nil), r.Ranges...)
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })
		for i, rg := range ranges {
			if rg.Min > rg.Max {
				return fmt.Errorf("question %s: range min %v greater than max %v", q.ID, rg.Min, rg.Max)
			}
			if i > 0 && rg.Min <= ranges[i-1].Max {
				return fmt.Errorf("question %s: ranges [%v,%v] and [%v,%v] overlap",
					q.ID, ranges[i-1].Min, ranges[i-1].Max, rg.Min, rg.Max)
			}
		}
	case ChoiceRule:
		switch q.Type {
		case TypeSingleChoice, TypeMultipleChoice, TypeDropdown:
		default:
			return fmt.Errorf("question %s: option rule not allowed for type %s", q.ID, q.Type)
		}
		if len(q.Options) == 0 {
			return nil
		}
		offered := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			offered[o] = true
		}
		for label := range r.Scores {
			if !offered[label] {
				return fmt.Errorf("question %s: scored option %q is not offered", q.ID, label)
			}
		}
	case MultiplierRule:
		if q.Type != TypeNumber {
			return fmt.Errorf("question %s: multiplier rule not allowed for type %s", q.ID, q.Type)
		}
	}
	return nil
}
