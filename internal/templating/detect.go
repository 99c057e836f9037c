package templating

import (
	"strings"
	"time"
	"unicode"
)

type DetectedField struct {
	Name          string `json:"field_name"`
	SuggestedType string `json:"suggested_type"`
	DisplayName   string `json:"display_name"`
}

// suggestions is checked in order; the first matching substring wins.
var suggestions = []struct {
	fieldType string
	needles   []string
}{
	{"cnpj", []string{"cnpj"}},
	{"cpf", []string{"cpf"}},
	{"data", []string{"data", "date"}},
	{"moeda", []string{"valor", "preco", "price"}},
	{"email", []string{"email"}},
	{"telefone", []string{"telefone", "fone", "phone"}},
	{"cep", []string{"cep"}},
	{"endereco", []string{"endereco", "address"}},
	{"valor_extenso", []string{"extenso"}},
	{"numero", []string{"numero", "number"}},
	{"codigo", []string{"codigo", "code"}},
}

// Detect lists the distinct fields of body with a type suggested by name.
func Detect(body string) []DetectedField {
	names := Fields(body)
	fields := make([]DetectedField, 0, len(names))
	for _, name := range names {
		fields = append(fields, DetectedField{
			Name:          name,
			SuggestedType: SuggestType(name),
			DisplayName:   DisplayName(name),
		})
	}
	return fields
}

func SuggestType(name string) string {
	lower := strings.ToLower(name)
	for _, s := range suggestions {
		for _, needle := range s.needles {
			if strings.Contains(lower, needle) {
				return s.fieldType
			}
		}
	}
	return "texto"
}

// DisplayName turns "contratante_nome" into "Contratante Nome".
func DisplayName(name string) string {
	return capitalize(strings.ReplaceAll(name, "_", " "))
}

// Transform applies a named field-mapping transformation. Unknown names
// leave the value untouched.
func Transform(value, fn string) string {
	switch fn {
	case "uppercase":
		return strings.ToUpper(value)
	case "lowercase":
		return strings.ToLower(value)
	case "capitalize":
		return capitalize(value)
	case "formatDate":
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t.Format(dateLayout)
			}
		}
		return value
	default:
		return value
	}
}

func capitalize(s string) string {
	runes := []rune(s)
	start := true
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start {
				runes[i] = unicode.ToUpper(r)
			}
			start = false
		} else {
			start = true
		}
	}
	return string(runes)
}
