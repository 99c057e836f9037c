package services

import (
	"context"
	"fmt"

	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/templating"
)

const sourceTableClients = "clients"

// clientAliases lists the template field names filled from each client attribute.
var clientAliases = map[string][]string{
	"company_name": {
		"contratante_nome", "contratante_nome_1", "contratante_nome_2",
		"empresa_nome", "cliente_nome",
	},
	"cnpj": {
		"contratante_cnpj", "contratante_cnpj_1", "cnpj_cliente", "empresa_cnpj",
	},
	"legal_representative_name":  {"representante_nome", "contratante_representante"},
	"legal_representative_email": {"contratante_email", "representante_email"},
	"address":                    {"contratante_endereco", "contratante_endereco_1", "endereco_cliente"},
	"city":                       {"contratante_cidade", "cidade_cliente"},
	"state":                      {"contratante_estado", "estado_cliente"},
}

// clientAttribute returns a client column by name. Empty values count as absent.
func clientAttribute(client *models.Client, field string) (string, bool) {
	var value string
	switch field {
	case "company_name":
		value = client.CompanyName
	case "cnpj":
		value = deref(client.CNPJ)
	case "legal_representative_name":
		value = deref(client.LegalRepresentativeName)
	case "legal_representative_email":
		value = deref(client.LegalRepresentativeEmail)
	case "address":
		value = deref(client.Address)
	case "city":
		value = deref(client.City)
	case "state":
		value = deref(client.State)
	default:
		return "", false
	}
	return value, value != ""
}

// clientFieldValues expands the client into every alias it is known by.
func clientFieldValues(client *models.Client) map[string]string {
	values := make(map[string]string)
	for attribute, aliases := range clientAliases {
		v, ok := clientAttribute(client, attribute)
		if !ok {
			continue
		}
		for _, alias := range aliases {
			values[alias] = v
		}
	}
	return values
}

// buildFieldValues assembles the known values for a template. Precedence from
// lowest to highest: client aliases, active field mappings in ascending
// priority, caller supplied custom values.
func (s *documentService) buildFieldValues(ctx context.Context, template *models.DocumentTemplate, req *GenerateDocumentRequest) (map[string]string, *models.Client, error) {
	values := make(map[string]string)

	var client *models.Client
	if req.ClientID != nil {
		c, err := s.repo.Client().GetByID(ctx, nil, *req.ClientID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, nil, ErrClientNotFound
			}
			return nil, nil, fmt.Errorf("failed to load client: %w", err)
		}
		client = c
	}

	if client != nil && req.autoFill() {
		for k, v := range clientFieldValues(client) {
			values[k] = v
		}

		mappings, err := s.repo.FieldMapping().ListActiveByTemplate(ctx, nil, template.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load field mappings: %w", err)
		}
		for _, m := range mappings {
			if m.SourceTable != sourceTableClients {
				continue
			}
			v, ok := clientAttribute(client, m.SourceField)
			if !ok {
				continue
			}
			if m.TransformationFunction != nil {
				v = templating.Transform(v, *m.TransformationFunction)
			}
			values[m.FieldName] = v
		}
	}

	for k, v := range req.CustomValues {
		values[k] = v
	}

	return values, client, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
