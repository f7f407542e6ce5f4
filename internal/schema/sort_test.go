package schema_test

import (
	"testing"

	"db2graph/internal/metadata"
	"db2graph/internal/schema"
)

// table builds a table with an id primary key and one foreign key per dependency.
func table(t *testing.T, name string, deps ...string) *metadata.Table {
	t.Helper()
	tn := metadata.NewTableName(name)
	cols := []metadata.Column{metadata.NewColumn(tn, "id", metadata.PrimaryKey, "int", metadata.GraphInt)}
	for _, dep := range deps {
		fk := metadata.NewColumn(tn, dep+"Id", metadata.ForeignKey, "int", metadata.GraphInt)
		fk.References = metadata.NewTableName(dep)
		cols = append(cols, fk)
	}
	tbl, err := metadata.NewTable(tn, cols)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestSortTablesByFKCount_ComplexCircular(t *testing.T) {
	// A -> B -> C -> D -> E -> A (cycle)
	// F -> E (simple reference)
	// G (independent)
	tables := []*metadata.Table{
		table(t, "A", "B"),
		table(t, "B", "C"),
		table(t, "C", "D"),
		table(t, "D", "E"),
		table(t, "E", "A"),
		table(t, "F", "E"),
		table(t, "G"),
	}

	sorted := schema.SortTablesByFKCount(tables)

	if len(sorted) != len(tables) {
		t.Errorf("Expected %d tables, got %d", len(tables), len(sorted))
	}

	visited := make(map[string]bool)
	for _, tbl := range sorted {
		visited[tbl.Name().FullName()] = true
	}

	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		if !visited[name] {
			t.Errorf("Table %s is missing from the sorted list", name)
		}
	}

	if sorted[0].Name().FullName() != "G" {
		t.Errorf("Expected independent table G first, got %s", sorted[0].Name())
	}
}

func TestSortTablesByFKCount_Simple(t *testing.T) {
	// Users <- Orders <- OrderItems
	tables := []*metadata.Table{
		table(t, "OrderItems", "Orders"),
		table(t, "Orders", "Users"),
		table(t, "Users"),
	}

	sorted := schema.SortTablesByFKCount(tables)

	if sorted[0].Name().FullName() != "Users" {
		t.Errorf("Expected Users first, got %s", sorted[0].Name())
	}
	if sorted[1].Name().FullName() != "Orders" {
		t.Errorf("Expected Orders second, got %s", sorted[1].Name())
	}
	if sorted[2].Name().FullName() != "OrderItems" {
		t.Errorf("Expected OrderItems third, got %s", sorted[2].Name())
	}
}

func TestSortTablesByFKCount_IgnoresOutsideTables(t *testing.T) {
	tables := []*metadata.Table{
		table(t, "Person", "Address", "Country"),
		table(t, "Address"),
	}

	sorted := schema.SortTablesByFKCount(tables)

	if len(sorted) != 2 || sorted[0].Name().FullName() != "Address" {
		t.Errorf("Expected Address then Person, got %v", sorted)
	}
}
