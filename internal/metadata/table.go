package metadata

import (
	"fmt"
	"strings"
)

// Table is an endpoint table: ordered columns with exactly one primary key.
type Table struct {
	name    TableName
	columns []Column
	pk      int
}

func NewTable(name TableName, columns []Column) (*Table, error) {
	if name.IsZero() {
		return nil, fmt.Errorf("table name is required")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %s has no columns", ErrSchemaMismatch, name)
	}

	pk := -1
	var pkNames []string
	for i, c := range columns {
		if c.Table != name {
			return nil, fmt.Errorf("column %s does not belong to table %s", c.Name, name)
		}
		if c.IsPrimaryKey() {
			pk = i
			pkNames = append(pkNames, c.Alias)
		}
	}
	if len(pkNames) != 1 {
		return nil, fmt.Errorf("%w: table %s has %d primary key columns %v, expected exactly one",
			ErrSchemaMismatch, name, len(pkNames), pkNames)
	}

	return &Table{name: name, columns: append([]Column(nil), columns...), pk: pk}, nil
}

func (t *Table) Name() TableName { return t.name }

func (t *Table) Columns() []Column { return append([]Column(nil), t.columns...) }

func (t *Table) PrimaryKey() Column { return t.columns[t.pk] }

// ForeignKeys returns the referencing columns, including a primary key shared with a parent.
func (t *Table) ForeignKeys() []Column {
	var fks []Column
	for _, c := range t.columns {
		if c.HasReference() {
			fks = append(fks, c)
		}
	}
	return fks
}

// Column looks a column up by simple name, case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if strings.EqualFold(c.SimpleName(), name) {
			return c, true
		}
	}
	return Column{}, false
}

// Dependencies lists the distinct tables referenced by foreign keys, excluding self references.
func (t *Table) Dependencies() []TableName {
	seen := make(map[TableName]bool)
	var deps []TableName
	for _, c := range t.ForeignKeys() {
		if c.References.IsZero() || c.References == t.name || seen[c.References] {
			continue
		}
		seen[c.References] = true
		deps = append(deps, c.References)
	}
	return deps
}

func (t *Table) String() string { return t.name.FullName() }
