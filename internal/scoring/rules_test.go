package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRule(t *testing.T) {
	tests := []struct {
		name     string
		typ      QuestionType
		raw      string
		expected Rule
	}{
		{"boolean", TypeBoolean, `{"true_value":10,"false_value":2}`, BooleanRule{TrueValue: 10, FalseValue: 2}},
		{"scale", TypeScale, `{"ranges":[{"min":1,"max":3,"score":5}]}`, ScaleRule{Ranges: []Range{{Min: 1, Max: 3, Score: 5}}}},
		{"number ranges", TypeNumber, `{"ranges":[{"min":0,"max":9,"score":1}]}`, ScaleRule{Ranges: []Range{{Min: 0, Max: 9, Score: 1}}}},
		{"number multiplier", TypeNumber, `{"multiplier":1.5}`, MultiplierRule{Multiplier: 1.5}},
		{"choice", TypeSingleChoice, `{"options":{"Sim":10}}`, ChoiceRule{Scores: map[string]float64{"Sim": 10}}},
		{"empty", TypeBoolean, ``, nil},
		{"null", TypeScale, `null`, nil},
		{"empty object", TypeMultipleChoice, `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := DecodeRule(tt.typ, []byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rule)
		})
	}
}

func TestDecodeRule_Errors(t *testing.T) {
	_, err := DecodeRule(TypeText, []byte(`{"options":{"a":1}}`))
	assert.Error(t, err)

	_, err = DecodeRule(TypeBoolean, []byte(`{"true_value":"ten"}`))
	assert.Error(t, err)
}

func TestEncodeRule_RoundTrip(t *testing.T) {
	raw, err := EncodeRule(ChoiceRule{Scores: map[string]float64{"A": 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"options":{"A":3}}`, string(raw))

	raw, err = EncodeRule(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"no rule", Question{ID: "a", Type: TypeText}, false},
		{"valid scale", Question{ID: "a", Type: TypeScale, Rule: ScaleRule{Ranges: []Range{{1, 2, 0}, {3, 5, 10}}}}, false},
		{"overlapping ranges", Question{ID: "a", Type: TypeScale, Rule: ScaleRule{Ranges: []Range{{1, 3, 0}, {3, 5, 10}}}}, true},
		{"inverted range", Question{ID: "a", Type: TypeScale, Rule: ScaleRule{Ranges: []Range{{5, 1, 0}}}}, true},
		{"boolean on choice", Question{ID: "a", Type: TypeSingleChoice, Rule: BooleanRule{}}, true},
		{"unknown option", Question{ID: "a", Type: TypeSingleChoice, Options: []string{"x"}, Rule: ChoiceRule{Scores: map[string]float64{"y": 1}}}, true},
		{"multiplier on scale", Question{ID: "a", Type: TypeScale, Rule: MultiplierRule{Multiplier: 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.q)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionType_IsValid(t *testing.T) {
	assert.True(t, TypeDropdown.IsValid())
	assert.False(t, QuestionType("date").IsValid())
}
