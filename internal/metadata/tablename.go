package metadata

import "strings"

// TableName is a schema qualified table identifier. The zero value means "no table".
type TableName struct {
	schema string
	name   string
}

// NewTableName parses "schema.table". A name without a dot has an empty schema.
func NewTableName(fullName string) TableName {
	fullName = strings.TrimSpace(fullName)
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return TableName{schema: fullName[:i], name: fullName[i+1:]}
	}
	return TableName{name: fullName}
}

// TableNameOf builds a TableName from its parts.
func TableNameOf(schema, name string) TableName {
	return TableName{schema: schema, name: name}
}

func (t TableName) Schema() string { return t.schema }

// Simple returns the table name without its schema.
func (t TableName) Simple() string { return t.name }

func (t TableName) FullName() string {
	if t.schema == "" {
		return t.name
	}
	return t.schema + "." + t.name
}

func (t TableName) String() string { return t.FullName() }

func (t TableName) IsZero() bool { return t.name == "" }

// WithDefaultSchema fills in the schema when the name was given unqualified.
func (t TableName) WithDefaultSchema(schema string) TableName {
	if t.schema != "" || t.IsZero() {
		return t
	}
	return TableName{schema: schema, name: t.name}
}

// EqualFold compares full names case-insensitively (Oracle stores upper case names).
func (t TableName) EqualFold(other TableName) bool {
	return strings.EqualFold(t.FullName(), other.FullName())
}

func (t TableName) MarshalText() ([]byte, error) {
	return []byte(t.FullName()), nil
}

func (t *TableName) UnmarshalText(text []byte) error {
	*t = NewTableName(string(text))
	return nil
}
