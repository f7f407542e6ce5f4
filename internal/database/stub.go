package database

import (
	"database/sql"
	"fmt"
)

// ResultsBuilder assembles QueryResults for fakes and fixtures.
type ResultsBuilder struct {
	columns []string
	rows    [][]sql.NullString
}

func Results(columns ...string) *ResultsBuilder {
	return &ResultsBuilder{columns: columns}
}

// Row appends a row; nil cells are NULL, everything else is formatted with fmt.Sprint.
func (b *ResultsBuilder) Row(values ...any) *ResultsBuilder {
	cells := make([]sql.NullString, len(values))
	for i, v := range values {
		if v != nil {
			cells[i] = sql.NullString{String: fmt.Sprint(v), Valid: true}
		}
	}
	b.rows = append(b.rows, cells)
	return b
}

// Build panics when a row does not match the column count.
func (b *ResultsBuilder) Build() QueryResults {
	results, err := NewQueryResults(b.columns, b.rows)
	if err != nil {
		panic(err)
	}
	return results
}
