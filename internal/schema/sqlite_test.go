package schema_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"db2graph/internal/database"
	"db2graph/internal/dialect"
	"db2graph/internal/metadata"
	"db2graph/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var libraryDDL = []string{
	`CREATE TABLE Author (id INTEGER PRIMARY KEY, name TEXT NOT NULL, born DATE)`,
	`CREATE TABLE Book (id INTEGER PRIMARY KEY, title VARCHAR(200), authorId INTEGER REFERENCES Author(id))`,
	`CREATE TABLE Shelf (id INTEGER PRIMARY KEY, label TEXT)`,
	`CREATE TABLE Book_Shelf (bookId INTEGER NOT NULL REFERENCES Book, shelfId INTEGER NOT NULL REFERENCES Shelf(id), position INTEGER, PRIMARY KEY (bookId, shelfId))`,
}

func openLibrary(t *testing.T) *schema.Inspector {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range libraryDDL {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	d := dialect.GetDialect("sqlite")
	client := database.NewSQLClient(db, d, "")
	return schema.NewInspector(client, d, "", metadata.NewTinyIntResolver(metadata.TinyIntAsByte))
}

func TestSQLite_Inspect(t *testing.T) {
	inspector := openLibrary(t)
	ctx := context.Background()

	names, err := inspector.TableNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 4)

	book, err := inspector.Table(ctx, metadata.NewTableName("book"))
	require.NoError(t, err)
	assert.Equal(t, "main.Book", book.Name().FullName())
	assert.Equal(t, "main.Book.id", book.PrimaryKey().Name)
	assert.Equal(t, metadata.GraphLong, book.PrimaryKey().GraphType)

	fks := book.ForeignKeys()
	require.Len(t, fks, 1)
	assert.Equal(t, metadata.NewTableName("main.Author"), fks[0].References)

	title, ok := book.Column("title")
	require.True(t, ok)
	assert.Equal(t, metadata.GraphString, title.GraphType)
}

func TestSQLite_DetectDirectJoin(t *testing.T) {
	inspector := openLibrary(t)

	export, err := schema.NewJoinDetector(inspector).Detect(context.Background(),
		metadata.NewTableName("Author"), metadata.NewTableName("Book"), metadata.TableName{})
	require.NoError(t, err)

	require.Len(t, export.Joins(), 1)
	assert.Equal(t, "main.Book.authorId", export.Joins()[0].Source.Name)
	assert.Equal(t, "main.Author.id", export.Joins()[0].Target.Name)
	assert.Equal(t, "AUTHOR", schema.RelationshipType(export.Joins()[0]))
}

func TestSQLite_DetectBridge(t *testing.T) {
	inspector := openLibrary(t)

	export, err := schema.NewJoinDetector(inspector).Detect(context.Background(),
		metadata.NewTableName("Book"), metadata.NewTableName("Shelf"), metadata.TableName{})
	require.NoError(t, err)

	require.Len(t, export.JoinTables(), 1)
	jt := export.JoinTables()[0]
	assert.Equal(t, "main.Book_Shelf", jt.Name().FullName())
	assert.Equal(t, "main.Book_Shelf.bookId", jt.Left().Source.Name)
	// declared without a column, so it references the primary key implicitly
	assert.Empty(t, jt.Left().Source.ReferencedColumn)
	assert.Equal(t, "main.Book_Shelf.shelfId", jt.Right().Source.Name)
	require.Len(t, jt.DataColumns(), 1)
	assert.Equal(t, "position", jt.DataColumns()[0].Alias)
}
