package querier

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrNotReadOnly = errors.New("statement is not read-only")

var readOnlyLeading = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"EXPLAIN":  true,
	"FROM":     true, // duckdb FROM-first syntax
}

var writeKeywords = map[string]bool{
	"INSERT":   true,
	"UPDATE":   true,
	"DELETE":   true,
	"MERGE":    true,
	"CREATE":   true,
	"DROP":     true,
	"ALTER":    true,
	"TRUNCATE": true,
	"ATTACH":   true,
	"DETACH":   true,
	"COPY":     true,
	"GRANT":    true,
	"REVOKE":   true,
	"INSTALL":  true,
	"VACUUM":   true,
}

// CheckReadOnly accepts exactly one statement that starts with a read
// keyword and contains no write keyword outside literals and comments.
func CheckReadOnly(query string) error {
	code := stripLiterals(query)
	code = strings.TrimRightFunc(code, func(r rune) bool { return unicode.IsSpace(r) || r == ';' })
	if strings.Contains(code, ";") {
		return fmt.Errorf("%w: multiple statements", ErrNotReadOnly)
	}

	words := strings.FieldsFunc(code, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if len(words) == 0 {
		return fmt.Errorf("%w: empty statement", ErrNotReadOnly)
	}
	if first := strings.ToUpper(words[0]); !readOnlyLeading[first] {
		return fmt.Errorf("%w: %s statements are not allowed", ErrNotReadOnly, first)
	}
	for _, w := range words[1:] {
		if up := strings.ToUpper(w); writeKeywords[up] {
			return fmt.Errorf("%w: %s is not allowed", ErrNotReadOnly, up)
		}
	}
	return nil
}

// stripLiterals blanks out string literals, quoted identifiers and comments.
func stripLiterals(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote := c
			b.WriteRune(' ')
			for i++; i < len(rs); i++ {
				if rs[i] == quote {
					if i+1 < len(rs) && rs[i+1] == quote {
						i++
						continue
					}
					break
				}
			}
		case c == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			b.WriteRune('\n')
		case c == '/' && i+1 < len(rs) && rs[i+1] == '*':
			i += 2
			for i < len(rs) && !(rs[i] == '*' && i+1 < len(rs) && rs[i+1] == '/') {
				i++
			}
			i++
			b.WriteRune(' ')
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
