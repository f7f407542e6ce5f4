package mapping

import (
	"fmt"
	"strings"

	"db2graph/internal/logger"
	"db2graph/internal/metadata"
	"db2graph/internal/schema"
)

type ResourceKind string

const (
	NodeResource         ResourceKind = "node"
	RelationshipResource ResourceKind = "relationship"
)

// Resource is one CSV file pair to export: a node set read from an endpoint table, or a
// relationship set read from the table holding the foreign keys.
type Resource struct {
	Name      string                   `json:"name"`
	Kind      ResourceKind             `json:"kind"`
	Table     metadata.TableName       `json:"table"`
	GraphName string                   `json:"graphName"` // node label or relationship type
	Mappings  ColumnToCsvFieldMappings `json:"mappings"`
}

func (r Resource) IsNode() bool { return r.Kind == NodeResource }

type Options struct {
	// IDSpaces scopes every identifier to the id space of its table.
	IDSpaces bool
	// IncludeBridgeData exports the non-key bridge table columns as relationship properties.
	IncludeBridgeData bool
}

func DefaultOptions() Options {
	return Options{IDSpaces: true}
}

// Mapper turns a SchemaExport into the resources to export. It keeps no state, so mapping
// the same export twice yields identical resources.
type Mapper struct {
	opts Options
}

func NewMapper(opts Options) *Mapper {
	return &Mapper{opts: opts}
}

func (m *Mapper) Map(export *metadata.SchemaExport) ([]Resource, error) {
	var resources []Resource
	names := make(map[string]int)
	add := func(r Resource) {
		key := strings.ToLower(r.Name)
		names[key]++
		if n := names[key]; n > 1 {
			r.Name = fmt.Sprintf("%s_%d", r.Name, n)
		}
		logger.Debugf("Mapped %s %s: %s", r.Kind, r.Name, strings.Join(r.Mappings.Headers(), ","))
		resources = append(resources, r)
	}

	for _, table := range export.Tables() {
		r, err := m.node(export, table)
		if err != nil {
			return nil, err
		}
		add(r)
	}

	for _, join := range export.Joins() {
		r, err := m.joinRelationship(export, join)
		if err != nil {
			return nil, err
		}
		add(r)
	}

	for _, jt := range export.JoinTables() {
		r, err := m.bridgeRelationship(jt)
		if err != nil {
			return nil, err
		}
		add(r)
	}

	return resources, nil
}

func (m *Mapper) node(export *metadata.SchemaExport, table *metadata.Table) (Resource, error) {
	b := NewMappingsBuilder()
	for _, col := range table.Columns() {
		switch {
		case col.IsPrimaryKey():
			b.Add(col, ID(m.idSpace(table.Name())))
		case export.IsJoinSource(col):
			// exported as the relationship instead
		default:
			b.Add(col, Data(col.Alias, col.GraphType))
		}
	}

	mappings, err := b.Build()
	if err != nil {
		return Resource{}, fmt.Errorf("failed to map table %s: %w", table.Name(), err)
	}
	return Resource{
		Name:      strings.ToLower(table.Name().Simple()),
		Kind:      NodeResource,
		Table:     table.Name(),
		GraphName: schema.NodeLabel(table.Name()),
		Mappings:  mappings,
	}, nil
}

// joinRelationship reads one relationship per row of the referencing table: its primary key
// is the start node and the foreign key the end node.
func (m *Mapper) joinRelationship(export *metadata.SchemaExport, join metadata.Join) (Resource, error) {
	source, ok := export.Table(join.Source.Table)
	if !ok {
		return Resource{}, fmt.Errorf("%w: join source %s is not part of the export", ErrMapping, join.Source.Table)
	}

	end := join.Source
	if end.Name == source.PrimaryKey().Name {
		// shared primary key: the same column is read twice under two aliases
		end.Alias += "_end"
	}
	mappings, err := NewMappingsBuilder().
		Add(source.PrimaryKey(), StartID(m.idSpace(source.Name()))).
		Add(end, EndID(m.idSpace(join.Target.Table))).
		Build()
	if err != nil {
		return Resource{}, fmt.Errorf("failed to map join %s: %w", join, err)
	}

	relType := schema.RelationshipType(join)
	return Resource{
		Name:      strings.ToLower(source.Name().Simple() + "_" + relType),
		Kind:      RelationshipResource,
		Table:     source.Name(),
		GraphName: relType,
		Mappings:  mappings,
	}, nil
}

func (m *Mapper) bridgeRelationship(jt *metadata.JoinTable) (Resource, error) {
	b := NewMappingsBuilder().
		Add(jt.Left().Source, StartID(m.idSpace(jt.Left().Target.Table))).
		Add(jt.Right().Source, EndID(m.idSpace(jt.Right().Target.Table)))
	if m.opts.IncludeBridgeData {
		for _, col := range jt.DataColumns() {
			b.Add(col, Data(col.Alias, col.GraphType))
		}
	}

	mappings, err := b.Build()
	if err != nil {
		return Resource{}, fmt.Errorf("failed to map bridge table %s: %w", jt.Name(), err)
	}
	return Resource{
		Name:      strings.ToLower(jt.Name().Simple()),
		Kind:      RelationshipResource,
		Table:     jt.Name(),
		GraphName: schema.BridgeRelationshipType(jt),
		Mappings:  mappings,
	}, nil
}

func (m *Mapper) idSpace(table metadata.TableName) string {
	if !m.opts.IDSpaces {
		return ""
	}
	return table.FullName()
}
