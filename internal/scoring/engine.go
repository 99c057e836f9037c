package scoring

import (
	"math"
	"strconv"
	"strings"
)

type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
	Rule     Rule         `json:"-"`
}

// Answers maps a question id to the respondent's answer. Values are strings,
// string slices, booleans or numbers, as decoded from JSON.
type Answers map[string]any

type QuestionScore struct {
	QuestionID string  `json:"question_id"`
	Earned     float64 `json:"earned"`
	Max        float64 `json:"max"`
}

type Result struct {
	TotalScore           float64         `json:"total_score"`
	MaxPossibleScore     float64         `json:"max_possible_score"`
	CompletionPercentage int             `json:"completion_percentage"`
	Breakdown            []QuestionScore `json:"breakdown"`
}

// ComputeScore scores answers against questions. Malformed rules, unmapped
// options and out-of-range values contribute zero; it never fails.
func ComputeScore(questions []Question, answers Answers) Result {
	result := Result{Breakdown: make([]QuestionScore, 0, len(questions))}

	for _, q := range questions {
		if q.Rule == nil {
			continue
		}
		answer, answered := answers[q.ID]
		if answer == nil {
			answered = false
		}

		earned, max := scoreQuestion(q, answer, answered)
		result.TotalScore += earned
		result.MaxPossibleScore += max
		result.Breakdown = append(result.Breakdown, QuestionScore{
			QuestionID: q.ID,
			Earned:     earned,
			Max:        max,
		})
	}

	result.CompletionPercentage = Completion(questions, answers)
	return result
}

func scoreQuestion(q Question, answer any, answered bool) (earned, max float64) {
	switch q.Type {
	case TypeBoolean:
		rule, ok := q.Rule.(BooleanRule)
		if !ok {
			return 0, 0
		}
		max = math.Max(rule.TrueValue, rule.FalseValue)
		if !answered {
			return 0, max
		}
		v, ok := asBool(answer)
		if !ok {
			return 0, max
		}
		if v {
			return rule.TrueValue, max
		}
		return rule.FalseValue, max

	case TypeScale, TypeNumber:
		switch rule := q.Rule.(type) {
		case ScaleRule:
			max = maxRangeScore(rule.Ranges)
			if !answered {
				return 0, max
			}
			v, ok := asNumber(answer)
			if !ok {
				return 0, max
			}
			for _, rg := range rule.Ranges {
				if rg.Contains(v) {
					return rg.Score, max
				}
			}
			return 0, max
		case MultiplierRule:
			if !answered {
				return 0, 0
			}
			v, ok := asNumber(answer)
			if !ok {
				return 0, 0
			}
			return v * rule.Multiplier, 0
		}
		return 0, 0

	case TypeSingleChoice, TypeDropdown:
		rule, ok := q.Rule.(ChoiceRule)
		if !ok {
			return 0, 0
		}
		max = maxChoiceScore(rule.Scores)
		if !answered {
			return 0, max
		}
		label, ok := answer.(string)
		if !ok {
			return 0, max
		}
		return rule.Scores[label], max

	case TypeMultipleChoice:
		rule, ok := q.Rule.(ChoiceRule)
		if !ok {
			return 0, 0
		}
		if len(q.Options) > 0 {
			for _, option := range q.Options {
				max += rule.Scores[option]
			}
		} else {
			for _, score := range rule.Scores {
				max += score
			}
		}
		if !answered {
			return 0, max
		}
		seen := make(map[string]bool)
		for _, label := range asStrings(answer) {
			if seen[label] {
				continue
			}
			seen[label] = true
			earned += rule.Scores[label]
		}
		return earned, max
	}

	return 0, 0
}

// Completion returns the share of required questions that carry a non-empty
// answer, rounded to a whole percentage. Without required questions it is 100.
func Completion(questions []Question, answers Answers) int {
	required, done := 0, 0
	for _, q := range questions {
		if !q.Required {
			continue
		}
		required++
		if IsAnswered(answers[q.ID]) {
			done++
		}
	}
	if required == 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(required)))
}

// IsAnswered reports whether v counts as an answer for completion purposes.
func IsAnswered(v any) bool {
	switch a := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(a) != ""
	case []string:
		return len(a) > 0
	case []any:
		return len(a) > 0
	default:
		return true
	}
}

func maxRangeScore(ranges []Range) float64 {
	if len(ranges) == 0 {
		return 0
	}
	max := ranges[0].Score
	for _, rg := range ranges[1:] {
		if rg.Score > max {
			max = rg.Score
		}
	}
	return max
}

func maxChoiceScore(scores map[string]float64) float64 {
	first := true
	var max float64
	for _, s := range scores {
		if first || s > max {
			max = s
			first = false
		}
	}
	return max
}

func asBool(v any) (bool, bool) {
	switch a := v.(type) {
	case bool:
		return a, true
	case string:
		switch strings.ToLower(strings.TrimSpace(a)) {
		case "true", "sim", "yes", "1":
			return true, true
		case "false", "não", "nao", "no", "0":
			return false, true
		}
	}
	return false, false
}

func asNumber(v any) (float64, bool) {
	switch a := v.(type) {
	case float64:
		return a, true
	case float32:
		return float64(a), true
	case int:
		return float64(a), true
	case int64:
		return float64(a), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(a, ",", ".", 1)), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asStrings accepts a list of labels or a single label.
func asStrings(v any) []string {
	switch a := v.(type) {
	case []string:
		return a
	case []any:
		out := make([]string, 0, len(a))
		for _, item := range a {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{a}
	}
	return nil
}
