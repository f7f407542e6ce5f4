package metadata

import "strings"

type ColumnRole string

const (
	PrimaryKey ColumnRole = "PrimaryKey"
	ForeignKey ColumnRole = "ForeignKey"
	Data       ColumnRole = "Data"
)

// Column is one source column. Name is fully qualified ("test.Person.id"), Alias is the
// name the column gets in the exported CSV ("id").
type Column struct {
	Table     TableName     `json:"table"`
	Name      string        `json:"name"`
	Alias     string        `json:"alias"`
	Role      ColumnRole    `json:"role"`
	SQLType   SQLDataType   `json:"sqlType"`
	GraphType GraphDataType `json:"graphType"`

	// Set for foreign keys, and for primary keys that also reference another table.
	References       TableName `json:"references"`
	ReferencedColumn string    `json:"referencedColumn,omitempty"`
}

// NewColumn creates a column aliased by its simple name.
func NewColumn(table TableName, name string, role ColumnRole, sqlType SQLDataType, graphType GraphDataType) Column {
	return Column{
		Table:     table,
		Name:      table.FullName() + "." + name,
		Alias:     name,
		Role:      role,
		SQLType:   sqlType,
		GraphType: graphType,
	}
}

// SimpleName is the column name without table and schema.
func (c Column) SimpleName() string {
	if i := strings.LastIndex(c.Name, "."); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

func (c Column) IsPrimaryKey() bool { return c.Role == PrimaryKey }
func (c Column) IsForeignKey() bool { return c.Role == ForeignKey }

// HasReference reports whether the column points at another table: every foreign key, and
// a primary key shared with a parent table.
func (c Column) HasReference() bool { return c.Role == ForeignKey || !c.References.IsZero() }

func (c Column) String() string { return c.Name }
