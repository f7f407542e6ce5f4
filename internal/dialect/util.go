package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders returns count comma separated placeholders starting at index start.
func GeneratePlaceholders(start, count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(start + i)
	}
	return strings.Join(placeholders, ", ")
}

// DefaultNormalizeType lower-cases a type and drops size and sign modifiers:
// "VARCHAR(255)" -> "varchar", "int unsigned" -> "int".
func DefaultNormalizeType(sqlType string) string {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.Index(t, "("); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " unsigned")
	return strings.TrimSpace(t)
}

// DefaultSchemaOr returns input, or fallback when input is empty.
func DefaultSchemaOr(input, fallback string) string {
	if input == "" {
		return fallback
	}
	return input
}

func quoteWith(open, close, name string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

func limitClause(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}
