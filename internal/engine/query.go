package engine

import (
	"fmt"
	"strings"

	"db2graph/internal/dialect"
	"db2graph/internal/mapping"
	"db2graph/internal/metadata"
)

// ProjectionQuery selects the mapped columns of r under their aliases, in mapping order.
// Relationship rows without both ends are skipped.
func ProjectionQuery(d dialect.Dialect, r mapping.Resource) string {
	var cols []string
	for _, c := range r.Mappings.Columns() {
		cols = append(cols, fmt.Sprintf("%s AS %s", columnRef(d, c), d.QuoteIdentifier(c.Alias)))
	}
	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(cols, ", "), tableRef(d, r.Table), where(d, r))
}

// CountQuery counts the rows ProjectionQuery returns.
func CountQuery(d dialect.Dialect, r mapping.Resource) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", tableRef(d, r.Table), where(d, r))
}

func where(d dialect.Dialect, r mapping.Resource) string {
	if r.IsNode() {
		return ""
	}
	var conds []string
	for _, kind := range []mapping.FieldKind{mapping.FieldStartID, mapping.FieldEndID} {
		for _, m := range r.Mappings.FieldsOf(kind) {
			conds = append(conds, columnRef(d, m.Column)+" IS NOT NULL")
		}
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func tableRef(d dialect.Dialect, t metadata.TableName) string {
	if t.Schema() == "" {
		return d.QuoteIdentifier(t.Simple())
	}
	return d.QuoteIdentifier(t.Schema()) + "." + d.QuoteIdentifier(t.Simple())
}

func columnRef(d dialect.Dialect, c metadata.Column) string {
	return d.QuoteIdentifier(c.Table.Simple()) + "." + d.QuoteIdentifier(c.SimpleName())
}
