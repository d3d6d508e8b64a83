package projection

import (
	"strings"
	"unicode"
)

// TableName returns the lower snake case table for a record type, with prefix
// prepended. Characters outside [a-z0-9_] become underscores.
func TableName(prefix, recordType string) string {
	var b strings.Builder
	runes := []rune(recordType)
	for i, r := range runes {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 && needsBreak(runes, i) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case isIdentRune(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return sanitize(prefix) + collapse(b.String())
}

// needsBreak reports whether the upper case rune at i starts a new word:
// after a lower case letter or digit, or at the end of an acronym.
func needsBreak(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}

// ColumnName sanitises a decoded column name, preserving case.
func ColumnName(name string) string {
	return sanitize(name)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if isIdentRune(r) || (r >= 'A' && r <= 'Z') {
			return r
		}
		return '_'
	}, s)
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func collapse(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
