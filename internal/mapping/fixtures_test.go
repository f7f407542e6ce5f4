package mapping_test

import (
	"testing"

	"db2graph/internal/metadata"

	"github.com/stretchr/testify/require"
)

var (
	personName  = metadata.NewTableName("test.Person")
	addressName = metadata.NewTableName("test.Address")
	studentName = metadata.NewTableName("test.Student")
	courseName  = metadata.NewTableName("test.Course")
	bridgeName  = metadata.NewTableName("test.Student_Course")
)

func pk(table metadata.TableName) metadata.Column {
	return metadata.NewColumn(table, "id", metadata.PrimaryKey, "int", metadata.GraphInt)
}

func data(table metadata.TableName, name string, graphType metadata.GraphDataType) metadata.Column {
	return metadata.NewColumn(table, name, metadata.Data, "varchar", graphType)
}

func fk(table metadata.TableName, name string, references metadata.TableName) metadata.Column {
	c := metadata.NewColumn(table, name, metadata.ForeignKey, "int", metadata.GraphInt)
	c.References = references
	c.ReferencedColumn = "id"
	return c
}

// personAddressExport is Person(id, username, addressId -> Address.id) and Address(id, postcode).
func personAddressExport(t *testing.T) *metadata.SchemaExport {
	t.Helper()
	addressID := pk(addressName)
	addressFK := fk(personName, "addressId", addressName)

	person, err := metadata.NewTable(personName, []metadata.Column{pk(personName), data(personName, "username", metadata.GraphString), addressFK})
	require.NoError(t, err)
	address, err := metadata.NewTable(addressName, []metadata.Column{addressID, data(addressName, "postcode", metadata.GraphString)})
	require.NoError(t, err)

	join, err := metadata.NewJoin(addressFK, addressID)
	require.NoError(t, err)

	export, err := metadata.NewSchemaExport([]*metadata.Table{address, person}, personName, addressName, []metadata.Join{join}, nil)
	require.NoError(t, err)
	return export
}

// studentCourseExport links Student and Course through Student_Course(studentId, courseId, credits).
func studentCourseExport(t *testing.T) *metadata.SchemaExport {
	t.Helper()
	studentID, courseID := pk(studentName), pk(courseName)

	student, err := metadata.NewTable(studentName, []metadata.Column{studentID, data(studentName, "username", metadata.GraphString)})
	require.NoError(t, err)
	course, err := metadata.NewTable(courseName, []metadata.Column{courseID, data(courseName, "name", metadata.GraphString)})
	require.NoError(t, err)

	studentFK := fk(bridgeName, "studentId", studentName)
	courseFK := fk(bridgeName, "courseId", courseName)
	credits := data(bridgeName, "credits", metadata.GraphInt)

	left, err := metadata.NewJoin(studentFK, studentID)
	require.NoError(t, err)
	right, err := metadata.NewJoin(courseFK, courseID)
	require.NoError(t, err)
	jt, err := metadata.NewJoinTable(bridgeName, []metadata.Column{studentFK, courseFK, credits}, left, right)
	require.NoError(t, err)

	export, err := metadata.NewSchemaExport([]*metadata.Table{student, course}, studentName, courseName, nil, []*metadata.JoinTable{jt})
	require.NoError(t, err)
	return export
}
