package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"db2graph/internal/metadata"
)

// Mapping pairs a source column with the CSV field it is exported as.
type Mapping struct {
	Column metadata.Column `json:"column"`
	Field  CsvField        `json:"field"`
}

// ColumnToCsvFieldMappings is an ordered, non-empty set of column to field mappings. The
// order is the column order of both the projection query and the CSV files.
type ColumnToCsvFieldMappings struct {
	mappings []Mapping
}

type MappingsBuilder struct {
	mappings []Mapping
}

func NewMappingsBuilder() *MappingsBuilder {
	return &MappingsBuilder{}
}

func (b *MappingsBuilder) Add(column metadata.Column, field CsvField) *MappingsBuilder {
	b.mappings = append(b.mappings, Mapping{Column: column, Field: field})
	return b
}

// Build fails with ErrMapping when nothing was added, when a column is added twice under the
// same alias or when two columns of the same table share an alias.
func (b *MappingsBuilder) Build() (ColumnToCsvFieldMappings, error) {
	if len(b.mappings) == 0 {
		return ColumnToCsvFieldMappings{}, fmt.Errorf("%w: no mappable columns", ErrMapping)
	}

	names := make(map[string]bool, len(b.mappings))
	aliases := make(map[string]string, len(b.mappings))
	for _, m := range b.mappings {
		if m.Column.Alias == "" {
			return ColumnToCsvFieldMappings{}, fmt.Errorf("%w: column %s has no alias", ErrMapping, m.Column.Name)
		}
		if m.Field.Kind() == "" {
			return ColumnToCsvFieldMappings{}, fmt.Errorf("%w: column %s has no field", ErrMapping, m.Column.Name)
		}
		if names[m.Column.Name+"\x00"+m.Column.Alias] {
			return ColumnToCsvFieldMappings{}, fmt.Errorf("%w: column %s mapped twice", ErrMapping, m.Column.Name)
		}
		names[m.Column.Name+"\x00"+m.Column.Alias] = true

		key := strings.ToUpper(m.Column.Table.FullName() + "." + m.Column.Alias)
		if other, ok := aliases[key]; ok {
			return ColumnToCsvFieldMappings{}, fmt.Errorf("%w: columns %s and %s share the alias %q",
				ErrMapping, other, m.Column.Name, m.Column.Alias)
		}
		aliases[key] = m.Column.Name
	}

	return ColumnToCsvFieldMappings{mappings: append([]Mapping(nil), b.mappings...)}, nil
}

func (m ColumnToCsvFieldMappings) Mappings() []Mapping { return append([]Mapping(nil), m.mappings...) }

func (m ColumnToCsvFieldMappings) Len() int { return len(m.mappings) }

func (m ColumnToCsvFieldMappings) Fields() []CsvField {
	fields := make([]CsvField, len(m.mappings))
	for i, mapping := range m.mappings {
		fields[i] = mapping.Field
	}
	return fields
}

func (m ColumnToCsvFieldMappings) Columns() []metadata.Column {
	cols := make([]metadata.Column, len(m.mappings))
	for i, mapping := range m.mappings {
		cols[i] = mapping.Column
	}
	return cols
}

// AliasedColumns renders the projection list: "test.Person.id AS id".
func (m ColumnToCsvFieldMappings) AliasedColumns() []string {
	aliased := make([]string, len(m.mappings))
	for i, mapping := range m.mappings {
		aliased[i] = fmt.Sprintf("%s AS %s", mapping.Column.Name, mapping.Column.Alias)
	}
	return aliased
}

// TableNames lists the distinct tables the mappings read from, in first-seen order.
func (m ColumnToCsvFieldMappings) TableNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, mapping := range m.mappings {
		name := mapping.Column.Table.FullName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Headers renders one header cell per field.
func (m ColumnToCsvFieldMappings) Headers() []string {
	headers := make([]string, len(m.mappings))
	for i, mapping := range m.mappings {
		headers[i] = mapping.Field.Header()
	}
	return headers
}

// FieldsOf returns the mappings whose field is of kind.
func (m ColumnToCsvFieldMappings) FieldsOf(kind FieldKind) []Mapping {
	var out []Mapping
	for _, mapping := range m.mappings {
		if mapping.Field.Kind() == kind {
			out = append(out, mapping)
		}
	}
	return out
}

func (m ColumnToCsvFieldMappings) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.mappings)
}

// UnmarshalJSON rebuilds the mappings through MappingsBuilder so a decoded value keeps the
// same guarantees as a built one.
func (m *ColumnToCsvFieldMappings) UnmarshalJSON(data []byte) error {
	var raw []Mapping
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b := NewMappingsBuilder()
	for _, r := range raw {
		b.Add(r.Column, r.Field)
	}
	built, err := b.Build()
	if err != nil {
		return err
	}
	*m = built
	return nil
}
