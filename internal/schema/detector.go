package schema

import (
	"context"
	"fmt"
	"strings"

	"db2graph/internal/logger"
	"db2graph/internal/metadata"
)

// JoinDetector infers how two endpoint tables are related: directly through a foreign key,
// or through a bridge table holding one foreign key to each of them.
type JoinDetector struct {
	inspector *Inspector
}

func NewJoinDetector(inspector *Inspector) *JoinDetector {
	return &JoinDetector{inspector: inspector}
}

// foreignKeyEdge is one row of the relationships query.
type foreignKeyEdge struct {
	source       metadata.TableName
	sourceColumn string
	target       metadata.TableName
	targetColumn string
}

// Detect builds the SchemaExport for start and end. A direct foreign key between the two
// always wins. Otherwise bridge, when non-zero, names the bridge table to use; when zero the
// bridge is discovered among the tables referencing both endpoints.
func (d *JoinDetector) Detect(ctx context.Context, start, end, bridge metadata.TableName) (*metadata.SchemaExport, error) {
	start, err := d.inspector.Resolve(ctx, start)
	if err != nil {
		return nil, err
	}
	end, err = d.inspector.Resolve(ctx, end)
	if err != nil {
		return nil, err
	}
	if start == end {
		return nil, fmt.Errorf("%w: start and end table are both %s", metadata.ErrSchemaMismatch, start)
	}

	startTable, err := d.inspector.Table(ctx, start)
	if err != nil {
		return nil, err
	}
	endTable, err := d.inspector.Table(ctx, end)
	if err != nil {
		return nil, err
	}

	edges, err := d.relationships(ctx, start, end)
	if err != nil {
		return nil, err
	}
	tables := SortTablesByFKCount([]*metadata.Table{startTable, endTable})

	if joins := directJoins(edges, startTable, endTable); len(joins) > 0 {
		if !bridge.IsZero() {
			logger.Warnf("Ignoring bridge table %s: %s and %s are related directly", bridge, start, end)
		}
		for _, j := range joins {
			logger.Debugf("Detected join %s", j)
		}
		return metadata.NewSchemaExport(tables, start, end, joins, nil)
	}

	var jt *metadata.JoinTable
	if !bridge.IsZero() {
		name, err := d.inspector.Resolve(ctx, bridge)
		if err != nil {
			return nil, err
		}
		if jt, err = d.bridgeTable(ctx, name, startTable, endTable); err != nil {
			return nil, err
		}
	} else {
		if jt, err = d.discoverBridge(ctx, edges, startTable, endTable); err != nil {
			return nil, err
		}
	}

	logger.Debugf("Detected bridge table %s", jt)
	return metadata.NewSchemaExport(tables, start, end, nil, []*metadata.JoinTable{jt})
}

func (d *JoinDetector) relationships(ctx context.Context, start, end metadata.TableName) ([]foreignKeyEdge, error) {
	i := d.inspector
	results, err := i.client.ExecuteQuery(ctx, i.dialect.RelationshipsQuery(),
		start.Schema(), start.Simple(), end.Simple(), start.Simple(), end.Simple()).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships of %s and %s: %w", start, end, err)
	}

	var edges []foreignKeyEdge
	for _, row := range results.Rows() {
		source, ok1 := row.Lookup("SOURCE_TABLE_NAME")
		target, ok2 := row.Lookup("TARGET_TABLE_NAME")
		if !ok1 || !ok2 {
			continue
		}
		edges = append(edges, foreignKeyEdge{
			source:       metadata.TableNameOf(schemaOr(row.String("SOURCE_TABLE_SCHEMA"), start.Schema()), source),
			sourceColumn: row.String("SOURCE_COLUMN_NAME"),
			target:       metadata.TableNameOf(schemaOr(row.String("TARGET_TABLE_SCHEMA"), start.Schema()), target),
			targetColumn: row.String("TARGET_COLUMN_NAME"),
		})
	}
	return edges, nil
}

// directJoins returns the joins between the endpoints oriented by the actual reference,
// whichever endpoint holds the foreign key.
func directJoins(edges []foreignKeyEdge, startTable, endTable *metadata.Table) []metadata.Join {
	var joins []metadata.Join
	seen := make(map[string]bool)
	for _, e := range edges {
		var source, target *metadata.Table
		switch {
		case e.source.EqualFold(startTable.Name()) && e.target.EqualFold(endTable.Name()):
			source, target = startTable, endTable
		case e.source.EqualFold(endTable.Name()) && e.target.EqualFold(startTable.Name()):
			source, target = endTable, startTable
		default:
			continue
		}

		col, ok := source.Column(e.sourceColumn)
		if !ok || !col.HasReference() || seen[col.Name] {
			continue
		}
		if !referencesPrimaryKey(col, target) {
			continue
		}
		join, err := metadata.NewJoin(col, target.PrimaryKey())
		if err != nil {
			continue
		}
		seen[col.Name] = true
		joins = append(joins, join)
	}
	return joins
}

// discoverBridge looks for exactly one table referencing both endpoints that qualifies as a
// bridge.
func (d *JoinDetector) discoverBridge(ctx context.Context, edges []foreignKeyEdge, startTable, endTable *metadata.Table) (*metadata.JoinTable, error) {
	toStart := make(map[string]bool)
	toEnd := make(map[string]bool)
	var order []metadata.TableName
	for _, e := range edges {
		if e.source.EqualFold(startTable.Name()) || e.source.EqualFold(endTable.Name()) {
			continue
		}
		key := strings.ToUpper(e.source.FullName())
		if !toStart[key] && !toEnd[key] {
			order = append(order, e.source)
		}
		if e.target.EqualFold(startTable.Name()) {
			toStart[key] = true
		}
		if e.target.EqualFold(endTable.Name()) {
			toEnd[key] = true
		}
	}

	var found []*metadata.JoinTable
	for _, candidate := range order {
		key := strings.ToUpper(candidate.FullName())
		if !toStart[key] || !toEnd[key] {
			continue
		}
		name, err := d.inspector.Resolve(ctx, candidate)
		if err != nil {
			return nil, err
		}
		jt, err := d.bridgeTable(ctx, name, startTable, endTable)
		if err != nil {
			logger.Debugf("Skipping bridge candidate %s: %v", name, err)
			continue
		}
		found = append(found, jt)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: no relationship found between %s and %s",
			metadata.ErrSchemaMismatch, startTable.Name(), endTable.Name())
	case 1:
		return found[0], nil
	default:
		names := make([]string, len(found))
		for i, jt := range found {
			names[i] = jt.Name().FullName()
		}
		return nil, fmt.Errorf("%w: %s and %s are linked by several bridge tables (%s); name the bridge table explicitly",
			metadata.ErrSchemaMismatch, startTable.Name(), endTable.Name(), strings.Join(names, ", "))
	}
}

// bridgeTable validates name as a bridge: exactly two referencing columns, one pointing at
// each endpoint's primary key. Any other columns are relationship data.
func (d *JoinDetector) bridgeTable(ctx context.Context, name metadata.TableName, startTable, endTable *metadata.Table) (*metadata.JoinTable, error) {
	columns, err := d.inspector.Columns(ctx, name)
	if err != nil {
		return nil, err
	}

	var fks []metadata.Column
	for _, c := range columns {
		if c.HasReference() {
			fks = append(fks, c)
		}
	}
	if len(fks) != 2 {
		return nil, fmt.Errorf("%w: bridge table %s must have exactly two foreign key columns, found %d",
			metadata.ErrSchemaMismatch, name, len(fks))
	}

	leftCol, rightCol := fks[0], fks[1]
	if !referencesPrimaryKey(leftCol, startTable) || !referencesPrimaryKey(rightCol, endTable) {
		leftCol, rightCol = fks[1], fks[0]
	}
	if !referencesPrimaryKey(leftCol, startTable) || !referencesPrimaryKey(rightCol, endTable) {
		return nil, fmt.Errorf("%w: bridge table %s does not reference the primary keys of %s and %s",
			metadata.ErrSchemaMismatch, name, startTable.Name(), endTable.Name())
	}

	left, err := metadata.NewJoin(leftCol, startTable.PrimaryKey())
	if err != nil {
		return nil, err
	}
	right, err := metadata.NewJoin(rightCol, endTable.PrimaryKey())
	if err != nil {
		return nil, err
	}
	return metadata.NewJoinTable(name, columns, left, right)
}

// referencesPrimaryKey reports whether fk points at table's primary key. An unknown
// referenced column means the key was declared against the primary key implicitly.
func referencesPrimaryKey(fk metadata.Column, table *metadata.Table) bool {
	if !fk.References.EqualFold(table.Name()) {
		return false
	}
	return fk.ReferencedColumn == "" || strings.EqualFold(fk.ReferencedColumn, table.PrimaryKey().SimpleName())
}

func schemaOr(schema, fallback string) string {
	if schema == "" {
		return fallback
	}
	return schema
}
