// Package templating finds {{field}} placeholders in document bodies and
// substitutes resolved values for them.
package templating

// Token is one placeholder occurrence. Start and End are byte offsets into
// the scanned body; body[Start:End] is the full "{{name}}" text.
type Token struct {
	Name  string
	Start int
	End   int
}

// Scan returns every non-overlapping placeholder in body, left to right.
// A placeholder is "{{" followed by one or more ASCII letters, digits or
// underscores, followed by "}}".
func Scan(body string) []Token {
	var tokens []Token

	for i := 0; i+1 < len(body); {
		if body[i] != '{' || body[i+1] != '{' {
			i++
			continue
		}

		j := i + 2
		for j < len(body) && isNameByte(body[j]) {
			j++
		}
		if j > i+2 && j+1 < len(body) && body[j] == '}' && body[j+1] == '}' {
			tokens = append(tokens, Token{Name: body[i+2 : j], Start: i, End: j + 2})
			i = j + 2
			continue
		}
		i++
	}

	return tokens
}

// Fields returns the distinct placeholder names in order of first occurrence.
func Fields(body string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range Scan(body) {
		if seen[tok.Name] {
			continue
		}
		seen[tok.Name] = true
		names = append(names, tok.Name)
	}
	return names
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
