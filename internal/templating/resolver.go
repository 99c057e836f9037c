package templating

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FieldCurrentDate      = "data_atual"
	FieldProposalDate     = "data_proposta"
	FieldSignatureDate    = "data_assinatura"
	FieldStartDate        = "data_inicio"
	FieldDocumentNumber   = "contrato_numero"
	FieldVerificationCode = "codigo_verificacao"

	verificationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	verificationLength   = 8
	dateLayout           = "02/01/2006"
)

// InvalidTemplateError is returned when a template body is not text.
type InvalidTemplateError struct {
	Reason string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template: %s", e.Reason)
}

type Result struct {
	ResolvedBody     string            `json:"resolved_body"`
	UnresolvedFields []string          `json:"unresolved_fields"`
	ResolvedCount    int               `json:"resolved_count"`
	TotalCount       int               `json:"total_count"`
	Values           map[string]string `json:"values"`
}

// IsComplete reports whether every placeholder had a value.
func (r *Result) IsComplete() bool {
	return len(r.UnresolvedFields) == 0
}

// CompletionPercentage is the share of distinct fields that resolved.
func (r *Result) CompletionPercentage() int {
	if r.TotalCount == 0 {
		return 100
	}
	return r.ResolvedCount * 100 / r.TotalCount
}

type options struct {
	now      func() time.Time
	random   io.Reader
	computed bool
}

type Option func(*options)

// WithClock overrides the time source used for computed date and number fields.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRandom overrides the entropy source for verification codes.
func WithRandom(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

// WithoutComputedFields disables the automatic date, number and code fields.
func WithoutComputedFields() Option {
	return func(o *options) { o.computed = false }
}

// Resolve substitutes every placeholder in body. Known values are matched
// exactly; computed fields fill keys the caller did not supply; anything left
// becomes an empty string and is reported in UnresolvedFields.
func Resolve(body string, known map[string]string, opts ...Option) (*Result, error) {
	o := options{now: time.Now, random: rand.Reader, computed: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !utf8.ValidString(body) {
		return nil, &InvalidTemplateError{Reason: "body is not valid UTF-8 text"}
	}

	tokens := Scan(body)
	values := make(map[string]string, len(known))
	for k, v := range known {
		values[k] = v
	}
	if o.computed {
		if err := addComputedFields(values, tokens, o); err != nil {
			return nil, err
		}
	}

	result := &Result{
		UnresolvedFields: []string{},
		Values:           make(map[string]string),
	}
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok.Name] {
			continue
		}
		seen[tok.Name] = true
		result.TotalCount++

		if v, ok := values[tok.Name]; ok {
			result.ResolvedCount++
			result.Values[tok.Name] = v
		} else {
			result.UnresolvedFields = append(result.UnresolvedFields, tok.Name)
			result.Values[tok.Name] = ""
		}
	}

	var b strings.Builder
	b.Grow(len(body))
	last := 0
	for _, tok := range tokens {
		b.WriteString(body[last:tok.Start])
		b.WriteString(result.Values[tok.Name])
		last = tok.End
	}
	b.WriteString(body[last:])
	result.ResolvedBody = b.String()

	return result, nil
}

// addComputedFields fills computed keys missing from values. Only fields
// present in the template are generated.
func addComputedFields(values map[string]string, tokens []Token, o options) error {
	now := o.now()
	date := now.Format(dateLayout)

	for _, tok := range tokens {
		if _, ok := values[tok.Name]; ok {
			continue
		}
		switch tok.Name {
		case FieldCurrentDate, FieldProposalDate, FieldSignatureDate, FieldStartDate:
			values[tok.Name] = date
		case FieldDocumentNumber:
			values[tok.Name] = DocumentNumber(now)
		case FieldVerificationCode:
			code, err := VerificationCode(o.random)
			if err != nil {
				return err
			}
			values[tok.Name] = code
		}
	}
	return nil
}

// DocumentNumber derives a contract number from the low-order digits of the
// millisecond timestamp.
func DocumentNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "CTR-" + ms
}

// VerificationCode draws an 8 character code from [0-9A-Z]. No uniqueness
// check is made against earlier codes.
func VerificationCode(r io.Reader) (string, error) {
	buf := make([]byte, verificationLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	for i, b := range buf {
		buf[i] = verificationAlphabet[int(b)%len(verificationAlphabet)]
	}
	return string(buf), nil
}
