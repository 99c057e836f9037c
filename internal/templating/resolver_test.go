package templating

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time {
	return time.Date(2025, 3, 7, 10, 30, 0, 0, time.UTC)
}

func TestScan(t *testing.T) {
	body := "Olá {{nome}}, {{ nome }} {{a-b}} {{}} {{{cnpj}}} {{nome}}"
	tokens := Scan(body)

	require.Len(t, tokens, 3)
	assert.Equal(t, "nome", tokens[0].Name)
	assert.Equal(t, "{{nome}}", body[tokens[0].Start:tokens[0].End])
	assert.Equal(t, "cnpj", tokens[1].Name)
	assert.Equal(t, "{{cnpj}}", body[tokens[1].Start:tokens[1].End])
	assert.Equal(t, "nome", tokens[2].Name)
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Fields("{{b}}{{a}}{{b}}"))
	assert.Nil(t, Fields("no placeholders"))
}

func TestResolve_UnresolvedCounts(t *testing.T) {
	result, err := Resolve("{{a}} and {{b}} and {{a}}", map[string]string{"a": "X"}, WithoutComputedFields())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.ResolvedCount)
	assert.Equal(t, []string{"b"}, result.UnresolvedFields)
	assert.Equal(t, "X and  and X", result.ResolvedBody)
	assert.False(t, result.IsComplete())
	assert.Equal(t, 50, result.CompletionPercentage())
}

func TestResolve_SubstringFieldNames(t *testing.T) {
	known := map[string]string{"nome": "ACME", "nome_1": "Fulano"}
	result, err := Resolve("{{nome_1}}/{{nome}}/{{nome_1}}", known, WithoutComputedFields())
	require.NoError(t, err)

	assert.Equal(t, "Fulano/ACME/Fulano", result.ResolvedBody)
	assert.Empty(t, Scan(result.ResolvedBody))
}

func TestResolve_ValueContainingPlaceholderIsNotRescanned(t *testing.T) {
	result, err := Resolve("{{a}}", map[string]string{"a": "{{b}}"}, WithoutComputedFields())
	require.NoError(t, err)

	assert.Equal(t, "{{b}}", result.ResolvedBody)
	assert.Equal(t, 1, result.TotalCount)
}

func TestResolve_CaseSensitive(t *testing.T) {
	result, err := Resolve("{{Nome}}", map[string]string{"nome": "x"}, WithoutComputedFields())
	require.NoError(t, err)

	assert.Equal(t, []string{"Nome"}, result.UnresolvedFields)
	assert.Equal(t, "", result.ResolvedBody)
}

func TestResolve_ComputedFields(t *testing.T) {
	random := bytes.NewReader([]byte{0, 1, 2, 3, 10, 11, 35, 36})
	body := "{{data_atual}} {{contrato_numero}} {{codigo_verificacao}} {{codigo_verificacao}}"

	result, err := Resolve(body, nil, WithClock(fixedNow), WithRandom(random))
	require.NoError(t, err)

	expectedNumber := DocumentNumber(fixedNow())
	assert.Equal(t, "07/03/2025 "+expectedNumber+" 0123ABZ0 0123ABZ0", result.ResolvedBody)
	assert.Equal(t, 3, result.ResolvedCount)
	assert.Empty(t, result.UnresolvedFields)
	assert.Equal(t, "0123ABZ0", result.Values[FieldVerificationCode])
}

func TestResolve_CallerValuesWinOverComputed(t *testing.T) {
	result, err := Resolve("{{data_atual}}", map[string]string{"data_atual": "01/01/2020"}, WithClock(fixedNow))
	require.NoError(t, err)
	assert.Equal(t, "01/01/2020", result.ResolvedBody)
}

func TestResolve_Idempotent(t *testing.T) {
	body := "<p>{{contratante_nome}} - {{data_atual}} - {{contrato_numero}} - {{faltando}}</p>"
	known := map[string]string{"contratante_nome": "ACME Ltda"}

	first, err := Resolve(body, known, WithClock(fixedNow))
	require.NoError(t, err)
	second, err := Resolve(body, known, WithClock(fixedNow))
	require.NoError(t, err)

	assert.Equal(t, first.ResolvedBody, second.ResolvedBody)
	assert.Equal(t, first.UnresolvedFields, second.UnresolvedFields)
}

func TestResolve_InvalidUTF8(t *testing.T) {
	_, err := Resolve(string([]byte{0xff, 0xfe}), nil)

	var invalid *InvalidTemplateError
	require.ErrorAs(t, err, &invalid)
}

func TestResolve_NoPlaceholders(t *testing.T) {
	result, err := Resolve("plain", nil)
	require.NoError(t, err)

	assert.Equal(t, "plain", result.ResolvedBody)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 100, result.CompletionPercentage())
	assert.NotNil(t, result.UnresolvedFields)
}

func TestDocumentNumber(t *testing.T) {
	now := time.UnixMilli(1741343400123)
	assert.Equal(t, "CTR-400123", DocumentNumber(now))
}

func TestVerificationCode(t *testing.T) {
	code, err := VerificationCode(bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	assert.Equal(t, "00000000", code)

	_, err = VerificationCode(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
