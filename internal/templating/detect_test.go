package templating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	body := "{{contratante_cnpj}} {{data_inicio}} {{valor_mensal}} {{valor_mensal_extenso}} {{representante_email}} {{observacao}} {{data_inicio}}"

	fields := Detect(body)

	assert.Equal(t, []DetectedField{
		{Name: "contratante_cnpj", SuggestedType: "cnpj", DisplayName: "Contratante Cnpj"},
		{Name: "data_inicio", SuggestedType: "data", DisplayName: "Data Inicio"},
		{Name: "valor_mensal", SuggestedType: "moeda", DisplayName: "Valor Mensal"},
		{Name: "valor_mensal_extenso", SuggestedType: "moeda", DisplayName: "Valor Mensal Extenso"},
		{Name: "representante_email", SuggestedType: "email", DisplayName: "Representante Email"},
		{Name: "observacao", SuggestedType: "texto", DisplayName: "Observacao"},
	}, fields)
}

func TestSuggestType(t *testing.T) {
	tests := map[string]string{
		"cpf_socio":         "cpf",
		"telefone_contato":  "telefone",
		"cep_cliente":       "cep",
		"endereco_cliente":  "endereco",
		"extenso":           "valor_extenso",
		"contrato_numero":   "numero",
		"codigo_interno":    "codigo",
		"nome_da_empresa":   "texto",
	}
	for name, expected := range tests {
		assert.Equal(t, expected, SuggestType(name), name)
	}
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "ACME", Transform("acme", "uppercase"))
	assert.Equal(t, "acme", Transform("ACME", "lowercase"))
	assert.Equal(t, "São Paulo Sp", Transform("são paulo sp", "capitalize"))
	assert.Equal(t, "07/03/2025", Transform("2025-03-07", "formatDate"))
	assert.Equal(t, "07/03/2025", Transform("2025-03-07T10:00:00Z", "formatDate"))
	assert.Equal(t, "not a date", Transform("not a date", "formatDate"))
	assert.Equal(t, "keep", Transform("keep", "formatCNPJ"))
}
