package metadata

import "fmt"

// SchemaExport is the graph shape inferred for one pair of endpoint tables. Exactly one of
// Joins (two-table case) and JoinTables (bridge case) is populated.
type SchemaExport struct {
	tables     []*Table
	start      TableName
	end        TableName
	joins      []Join
	joinTables []*JoinTable
}

func NewSchemaExport(tables []*Table, start, end TableName, joins []Join, joinTables []*JoinTable) (*SchemaExport, error) {
	switch {
	case len(joins) == 0 && len(joinTables) == 0:
		return nil, fmt.Errorf("%w: no relationship found between %s and %s", ErrSchemaMismatch, start, end)
	case len(joins) > 0 && len(joinTables) > 0:
		return nil, fmt.Errorf("%w: %s and %s are related both directly and through a bridge table", ErrSchemaMismatch, start, end)
	}

	e := &SchemaExport{
		tables:     append([]*Table(nil), tables...),
		start:      start,
		end:        end,
		joins:      append([]Join(nil), joins...),
		joinTables: append([]*JoinTable(nil), joinTables...),
	}
	for _, name := range []TableName{start, end} {
		if _, ok := e.Table(name); !ok {
			return nil, fmt.Errorf("endpoint table %s is not part of the export", name)
		}
	}
	return e, nil
}

func (e *SchemaExport) Tables() []*Table { return append([]*Table(nil), e.tables...) }

func (e *SchemaExport) Table(name TableName) (*Table, bool) {
	for _, t := range e.tables {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

func (e *SchemaExport) Start() TableName { return e.start }

func (e *SchemaExport) End() TableName { return e.end }

func (e *SchemaExport) Joins() []Join { return append([]Join(nil), e.joins...) }

func (e *SchemaExport) JoinTables() []*JoinTable { return append([]*JoinTable(nil), e.joinTables...) }

// Bridged reports whether the endpoints are connected through a bridge table.
func (e *SchemaExport) Bridged() bool { return len(e.joinTables) > 0 }

// IsJoinSource reports whether column is the referencing side of one of the direct joins.
func (e *SchemaExport) IsJoinSource(column Column) bool {
	for _, j := range e.joins {
		if j.Source.Name == column.Name {
			return true
		}
	}
	return false
}
