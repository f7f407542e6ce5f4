package metadata

import "fmt"

// Join is one foreign key edge. Source is the referencing column, Target the referenced
// primary key.
type Join struct {
	Source Column
	Target Column
}

func NewJoin(source, target Column) (Join, error) {
	if source.Table == target.Table {
		return Join{}, fmt.Errorf("join %s -> %s must connect two different tables", source.Name, target.Name)
	}
	if !source.HasReference() {
		return Join{}, fmt.Errorf("join source %s does not reference another table", source.Name)
	}
	if !target.IsPrimaryKey() {
		return Join{}, fmt.Errorf("join target %s is not a primary key", target.Name)
	}
	return Join{Source: source, Target: target}, nil
}

func (j Join) TableNames() []TableName {
	return []TableName{j.Source.Table, j.Target.Table}
}

func (j Join) String() string {
	return j.Source.Name + " -> " + j.Target.Name
}

// JoinTable is a bridge table materializing a many-to-many relationship. Left joins the
// bridge to the start table, Right to the end table.
type JoinTable struct {
	name    TableName
	columns []Column
	left    Join
	right   Join
}

func NewJoinTable(name TableName, columns []Column, left, right Join) (*JoinTable, error) {
	if left.Source.Table != name || right.Source.Table != name {
		return nil, fmt.Errorf("both joins of bridge table %s must start at the bridge (got %s, %s)", name, left, right)
	}
	if left.Source.Name == right.Source.Name {
		return nil, fmt.Errorf("bridge table %s uses column %s for both sides", name, left.Source.Name)
	}
	return &JoinTable{name: name, columns: append([]Column(nil), columns...), left: left, right: right}, nil
}

func (jt *JoinTable) Name() TableName { return jt.name }

func (jt *JoinTable) Columns() []Column { return append([]Column(nil), jt.columns...) }

func (jt *JoinTable) Left() Join { return jt.left }

func (jt *JoinTable) Right() Join { return jt.right }

// DataColumns returns the bridge columns that reference no table.
func (jt *JoinTable) DataColumns() []Column {
	var cols []Column
	for _, c := range jt.columns {
		if c.Name == jt.left.Source.Name || c.Name == jt.right.Source.Name || c.HasReference() {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func (jt *JoinTable) String() string {
	return fmt.Sprintf("%s [%s; %s]", jt.name, jt.left, jt.right)
}
