package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore_NoRules(t *testing.T) {
	questions := []Question{
		{ID: "q1", Type: TypeText, Required: true},
		{ID: "q2", Type: TypeBoolean},
		{ID: "q3", Type: TypeMultipleChoice, Options: []string{"A", "B"}},
	}
	answers := Answers{"q1": "hello", "q2": true, "q3": []string{"A", "B"}}

	result := ComputeScore(questions, answers)

	assert.Equal(t, 0.0, result.TotalScore)
	assert.Equal(t, 0.0, result.MaxPossibleScore)
	assert.Empty(t, result.Breakdown)
	assert.Equal(t, 100, result.CompletionPercentage)
}

func TestComputeScore_Boolean(t *testing.T) {
	q := Question{ID: "q1", Type: TypeBoolean, Rule: BooleanRule{TrueValue: 10, FalseValue: 0}}

	tests := []struct {
		name     string
		answer   any
		expected float64
	}{
		{"true", true, 10},
		{"false", false, 0},
		{"string sim", "Sim", 10},
		{"string false", "false", 0},
		{"garbage", "maybe", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeScore([]Question{q}, Answers{"q1": tt.answer})
			assert.Equal(t, tt.expected, result.TotalScore)
			assert.Equal(t, 10.0, result.MaxPossibleScore)
		})
	}
}

func TestComputeScore_Scale(t *testing.T) {
	q := Question{ID: "s", Type: TypeScale, Rule: ScaleRule{Ranges: []Range{
		{Min: 1, Max: 2, Score: 0},
		{Min: 3, Max: 3, Score: 5},
		{Min: 4, Max: 5, Score: 10},
	}}}

	tests := []struct {
		answer   any
		expected float64
	}{
		{4, 10},
		{3, 5},
		{1, 0},
		{6, 0},
		{"5", 10},
		{4.5, 10},
		{"abc", 0},
	}

	for _, tt := range tests {
		result := ComputeScore([]Question{q}, Answers{"s": tt.answer})
		assert.Equal(t, tt.expected, result.TotalScore, "answer %v", tt.answer)
		assert.Equal(t, 10.0, result.MaxPossibleScore)
	}
}

func TestComputeScore_SingleChoice(t *testing.T) {
	q := Question{
		ID:      "q2",
		Type:    TypeSingleChoice,
		Options: []string{"Sim", "Parcialmente", "Não"},
		Rule:    ChoiceRule{Scores: map[string]float64{"Sim": 10, "Parcialmente": 5, "Não": 0}},
	}

	assert.Equal(t, 5.0, ComputeScore([]Question{q}, Answers{"q2": "Parcialmente"}).TotalScore)
	assert.Equal(t, 0.0, ComputeScore([]Question{q}, Answers{"q2": "Talvez"}).TotalScore)

	result := ComputeScore([]Question{q}, Answers{})
	assert.Equal(t, 0.0, result.TotalScore)
	assert.Equal(t, 10.0, result.MaxPossibleScore)
}

func TestComputeScore_MultipleChoice(t *testing.T) {
	q := Question{
		ID:      "m",
		Type:    TypeMultipleChoice,
		Options: []string{"A", "B", "C"},
		Rule:    ChoiceRule{Scores: map[string]float64{"A": 3, "B": 4, "C": 0}},
	}

	tests := []struct {
		name     string
		answer   any
		expected float64
	}{
		{"two selected", []string{"A", "B"}, 7},
		{"none selected", []string{}, 0},
		{"decoded json array", []any{"A", "C"}, 3},
		{"unmapped label", []string{"Z", "B"}, 4},
		{"duplicate label", []string{"A", "A"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeScore([]Question{q}, Answers{"m": tt.answer})
			assert.Equal(t, tt.expected, result.TotalScore)
			assert.Equal(t, 7.0, result.MaxPossibleScore)
		})
	}
}

func TestComputeScore_MultipleChoiceWithoutOptions(t *testing.T) {
	q := Question{ID: "m", Type: TypeMultipleChoice, Rule: ChoiceRule{Scores: map[string]float64{"A": 1, "B": 2}}}

	result := ComputeScore([]Question{q}, Answers{"m": []string{"B"}})

	assert.Equal(t, 2.0, result.TotalScore)
	assert.Equal(t, 3.0, result.MaxPossibleScore)
}

func TestComputeScore_NumberMultiplier(t *testing.T) {
	q := Question{ID: "n", Type: TypeNumber, Rule: MultiplierRule{Multiplier: 2.5}}

	result := ComputeScore([]Question{q}, Answers{"n": "4"})

	assert.Equal(t, 10.0, result.TotalScore)
	assert.Equal(t, 0.0, result.MaxPossibleScore)
}

func TestComputeScore_RuleTypeMismatch(t *testing.T) {
	q := Question{ID: "q", Type: TypeBoolean, Rule: ChoiceRule{Scores: map[string]float64{"true": 5}}}

	result := ComputeScore([]Question{q}, Answers{"q": true})

	assert.Equal(t, 0.0, result.TotalScore)
	assert.Equal(t, 0.0, result.MaxPossibleScore)
}

func TestComputeScore_EndToEnd(t *testing.T) {
	questions := []Question{
		{ID: "q1", Type: TypeBoolean, Rule: BooleanRule{TrueValue: 10, FalseValue: 0}},
		{
			ID:      "q2",
			Type:    TypeSingleChoice,
			Options: []string{"Sim", "Não"},
			Rule:    ChoiceRule{Scores: map[string]float64{"Sim": 10, "Não": 0}},
		},
	}

	result := ComputeScore(questions, Answers{"q1": true, "q2": "Sim"})

	assert.Equal(t, 20.0, result.TotalScore)
	assert.Equal(t, 20.0, result.MaxPossibleScore)
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, QuestionScore{QuestionID: "q1", Earned: 10, Max: 10}, result.Breakdown[0])
}

func TestCompletion(t *testing.T) {
	questions := []Question{
		{ID: "r1", Type: TypeText, Required: true},
		{ID: "r2", Type: TypeMultipleChoice, Required: true},
		{ID: "r3", Type: TypeBoolean, Required: true},
		{ID: "o1", Type: TypeText},
	}

	tests := []struct {
		name     string
		answers  Answers
		expected int
	}{
		{"all required answered", Answers{"r1": "x", "r2": []string{"A"}, "r3": false}, 100},
		{"optional ignored", Answers{"r1": "x", "r2": []any{"A"}, "r3": true, "o1": ""}, 100},
		{"none answered", Answers{"o1": "filled"}, 0},
		{"blank string", Answers{"r1": "   ", "r2": []string{"A"}, "r3": true}, 67},
		{"empty array", Answers{"r1": "x", "r2": []string{}}, 33},
		{"nil value", Answers{"r1": nil}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Completion(questions, tt.answers))
		})
	}
}

func TestCompletion_NoRequiredQuestions(t *testing.T) {
	questions := []Question{{ID: "o1", Type: TypeText}}
	assert.Equal(t, 100, Completion(questions, Answers{}))
	assert.Equal(t, 100, Completion(nil, nil))
}
