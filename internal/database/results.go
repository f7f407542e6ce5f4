package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// QueryResults is a fully read result set with string typed cells.
type QueryResults struct {
	columns []string
	rows    []Row
}

// Row maps upper-cased column names to cell values, so lookups ignore the case the
// driver reports column labels in.
type Row struct {
	values map[string]sql.NullString
}

func NewQueryResults(columns []string, rows [][]sql.NullString) (QueryResults, error) {
	results := QueryResults{columns: append([]string(nil), columns...)}
	for i, cells := range rows {
		if len(cells) != len(columns) {
			return QueryResults{}, fmt.Errorf("row %d has %d cells, expected %d", i, len(cells), len(columns))
		}
		row := Row{values: make(map[string]sql.NullString, len(columns))}
		for j, col := range columns {
			key := strings.ToUpper(col)
			if _, dup := row.values[key]; dup {
				continue
			}
			row.values[key] = cells[j]
		}
		results.rows = append(results.rows, row)
	}
	return results, nil
}

func (q QueryResults) Columns() []string { return append([]string(nil), q.columns...) }

func (q QueryResults) Rows() []Row { return q.rows }

func (q QueryResults) Len() int { return len(q.rows) }

// String returns the cell value, or "" for NULL and unknown columns.
func (r Row) String(column string) string {
	return r.values[strings.ToUpper(column)].String
}

// Lookup reports false for NULL and unknown columns.
func (r Row) Lookup(column string) (string, bool) {
	v, ok := r.values[strings.ToUpper(column)]
	if !ok || !v.Valid {
		return "", false
	}
	return v.String, true
}

func (r Row) IsNull(column string) bool {
	_, ok := r.Lookup(column)
	return !ok
}
