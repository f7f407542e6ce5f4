package schema_test

import (
	"context"
	"fmt"

	"db2graph/internal/database"
	"db2graph/internal/dialect"
	"db2graph/internal/metadata"
	"db2graph/internal/schema"
)

var mysql = dialect.GetDialect("mysql")

// fakeClient answers the inspector's queries from canned results keyed by table.
type fakeClient struct {
	tables        []metadata.TableName
	columns       map[string]database.QueryResults
	relationships database.QueryResults
}

func newFakeClient(tables ...string) *fakeClient {
	f := &fakeClient{columns: make(map[string]database.QueryResults)}
	for _, t := range tables {
		f.tables = append(f.tables, metadata.NewTableName(t))
	}
	f.relationships = relationshipResults().Build()
	return f
}

func (f *fakeClient) TableNames(ctx context.Context) ([]metadata.TableName, error) {
	return f.tables, nil
}

func (f *fakeClient) ExecuteQuery(ctx context.Context, query string, args ...any) *database.AwaitHandle[database.QueryResults] {
	switch query {
	case mysql.ColumnsQuery():
		if r, ok := f.columns[fmt.Sprint(args[1])]; ok {
			return database.Resolved(r)
		}
		return database.Resolved(columnResults().Build())
	case mysql.RelationshipsQuery():
		return database.Resolved(f.relationships)
	}
	return database.Failed[database.QueryResults](fmt.Errorf("unexpected query: %s", query))
}

func columnResults() *database.ResultsBuilder {
	return database.Results("COLUMN_NAME", "DATA_TYPE", "COLUMN_KEY", "REFERENCED_TABLE_SCHEMA", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME")
}

func relationshipResults() *database.ResultsBuilder {
	return database.Results("SOURCE_TABLE_SCHEMA", "SOURCE_TABLE_NAME", "SOURCE_COLUMN_NAME",
		"TARGET_TABLE_SCHEMA", "TARGET_TABLE_NAME", "TARGET_COLUMN_NAME")
}

// personAddress is a two-table schema: Person.addressId -> Address.id.
func personAddress() *fakeClient {
	f := newFakeClient("test.Person", "test.Address")
	f.columns["Person"] = columnResults().
		Row("id", "int", "PRI", nil, nil, nil).
		Row("username", "varchar", "", nil, nil, nil).
		Row("active", "tinyint", "", nil, nil, nil).
		Row("addressId", "int", "MUL", "test", "Address", "id").
		Build()
	f.columns["Address"] = columnResults().
		Row("id", "int", "PRI", nil, nil, nil).
		Row("postcode", "varchar", "", nil, nil, nil).
		Build()
	f.relationships = relationshipResults().
		Row("test", "Person", "addressId", "test", "Address", "id").
		Build()
	return f
}

// studentCourse is a bridge schema: Student_Course(studentId, courseId).
func studentCourse() *fakeClient {
	f := newFakeClient("test.Student", "test.Course", "test.Student_Course")
	f.columns["Student"] = columnResults().
		Row("id", "int", "PRI", nil, nil, nil).
		Row("username", "varchar", "", nil, nil, nil).
		Build()
	f.columns["Course"] = columnResults().
		Row("id", "int", "PRI", nil, nil, nil).
		Row("name", "varchar", "", nil, nil, nil).
		Build()
	f.columns["Student_Course"] = columnResults().
		Row("studentId", "int", "MUL", nil, "Student", "id").
		Row("courseId", "int", "MUL", nil, "Course", "id").
		Row("credits", "int", "", nil, nil, nil).
		Build()
	f.relationships = relationshipResults().
		Row("test", "Student_Course", "studentId", "test", "Student", "id").
		Row("test", "Student_Course", "courseId", "test", "Course", "id").
		Build()
	return f
}

func newInspector(client database.Client, tinyInt metadata.TinyIntAs) *schema.Inspector {
	return schema.NewInspector(client, mysql, "test", metadata.NewTinyIntResolver(tinyInt))
}

func newDetector(client database.Client) *schema.JoinDetector {
	return schema.NewJoinDetector(newInspector(client, metadata.TinyIntAsByte))
}

// userProfile shares a primary key: Profile.userId is both its key and a reference to User.id.
func userProfile() *fakeClient {
	f := newFakeClient("test.User", "test.Profile")
	f.columns["User"] = columnResults().
		Row("id", "int", "PRI", nil, nil, nil).
		Row("login", "varchar", "", nil, nil, nil).
		Build()
	f.columns["Profile"] = columnResults().
		Row("userId", "int", "PRI", "test", "User", "id").
		Row("bio", "text", "", nil, nil, nil).
		Build()
	f.relationships = relationshipResults().
		Row("test", "Profile", "userId", "test", "User", "id").
		Build()
	return f
}
