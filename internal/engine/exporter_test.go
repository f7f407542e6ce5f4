package engine_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"db2graph/internal/database"
	"db2graph/internal/dialect"
	"db2graph/internal/engine"
	"db2graph/internal/mapping"
	"db2graph/internal/metadata"
	"db2graph/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var fixture = []string{
	`CREATE TABLE Address (id INTEGER PRIMARY KEY, postcode TEXT)`,
	`CREATE TABLE Person (id INTEGER PRIMARY KEY, username TEXT, active TINYINT, addressId INTEGER REFERENCES Address(id))`,
	`INSERT INTO Address (id, postcode) VALUES (1, 'AB12 1XY'), (2, 'XY98, 9BA')`,
	`INSERT INTO Person (id, username, active, addressId) VALUES (1, 'user-1', 1, 1), (2, 'user-2', 0, 2), (3, 'user "3"', NULL, NULL)`,
}

type testEnv struct {
	db      *sql.DB
	dialect dialect.Dialect
	file    mapping.ResourceFile
}

func setup(t *testing.T) testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range fixture {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	d := dialect.GetDialect("sqlite")
	tinyInt := metadata.NewTinyIntResolver(metadata.TinyIntAsBoolean)
	inspector := schema.NewInspector(database.NewSQLClient(db, d, ""), d, "", tinyInt)

	ctx := context.Background()
	export, err := schema.NewJoinDetector(inspector).Detect(ctx,
		metadata.NewTableName("Person"), metadata.NewTableName("Address"), metadata.TableName{})
	require.NoError(t, err)
	resources, err := mapping.NewMapper(mapping.DefaultOptions()).Map(export)
	require.NoError(t, err)

	return testEnv{db: db, dialect: d, file: mapping.NewResourceFile(export, resources)}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExport(t *testing.T) {
	env := setup(t)
	dir := filepath.Join(t.TempDir(), "csv-001")

	exporter := engine.NewExporter(env.db, env.dialect, engine.Options{
		Directory:   dir,
		TinyInt:     metadata.NewTinyIntResolver(metadata.TinyIntAsBoolean),
		Concurrency: 2,
	})

	var rows atomic.Int64
	manifest, results, err := exporter.Export(context.Background(), env.file, func(string) { rows.Add(1) })
	require.NoError(t, err)

	assert.Equal(t, ":ID(main.Address),postcode:string\n", readFile(t, filepath.Join(dir, "address_header.csv")))
	assert.Equal(t, "1,AB12 1XY\n2,\"XY98, 9BA\"\n", readFile(t, filepath.Join(dir, "address.csv")))
	assert.Equal(t, ":ID(main.Person),username:string,active:boolean\n", readFile(t, filepath.Join(dir, "person_header.csv")))
	assert.Equal(t, "1,user-1,true\n2,user-2,false\n3,\"user \"\"3\"\"\",\n", readFile(t, filepath.Join(dir, "person.csv")))
	assert.Equal(t, ":START_ID(main.Person),:END_ID(main.Address)\n", readFile(t, filepath.Join(dir, "person_address_header.csv")))
	// person 3 has no address, so no relationship
	assert.Equal(t, "1,1\n2,2\n", readFile(t, filepath.Join(dir, "person_address.csv")))

	assert.EqualValues(t, 7, rows.Load())
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, "OK", r.Status, r.Resource)
	}
	assert.Equal(t, 2, results[2].Target)

	assert.Equal(t, env.file.RunID, manifest.RunID)
	require.Len(t, manifest.Nodes, 2)
	assert.Equal(t, "Address", manifest.Nodes[0].Label)
	assert.Equal(t, []string{filepath.Join(dir, "address_header.csv"), filepath.Join(dir, "address.csv")}, manifest.Nodes[0].Files)
	require.Len(t, manifest.Relationships, 1)
	assert.Equal(t, "ADDRESS", manifest.Relationships[0].Type)
	assert.Len(t, manifest.Files(), 6)
}

func TestExport_Limit(t *testing.T) {
	env := setup(t)
	dir := t.TempDir()

	exporter := engine.NewExporter(env.db, env.dialect, engine.Options{Directory: dir, Limit: 1})
	_, results, err := exporter.Export(context.Background(), env.file, nil)
	require.NoError(t, err)

	assert.Equal(t, "1,user-1,1\n", readFile(t, filepath.Join(dir, "person.csv")))
	for _, r := range results {
		assert.Equal(t, 1, r.Target, r.Resource)
		assert.Equal(t, 1, r.Actual, r.Resource)
	}
}

func TestExport_CustomFormatting(t *testing.T) {
	env := setup(t)
	dir := t.TempDir()

	exporter := engine.NewExporter(env.db, env.dialect, engine.Options{
		Directory:  dir,
		Formatting: mapping.Formatting{Delimiter: ';', Quote: '\''},
	})
	_, _, err := exporter.Export(context.Background(), env.file, nil)
	require.NoError(t, err)

	assert.Equal(t, "1;AB12 1XY\n2;XY98, 9BA\n", readFile(t, filepath.Join(dir, "address.csv")))
}

func TestProjectionQuery(t *testing.T) {
	env := setup(t)
	rel := env.file.Resources[2]
	mysql := dialect.GetDialect("mysql")

	rel.Table = metadata.NewTableName("test.Person")
	assert.Equal(t,
		"SELECT `Person`.`id` AS `id`, `Person`.`addressId` AS `addressId` FROM `test`.`Person` WHERE `Person`.`id` IS NOT NULL AND `Person`.`addressId` IS NOT NULL",
		engine.ProjectionQuery(mysql, rel))
	assert.Equal(t,
		"SELECT COUNT(*) FROM `test`.`Person` WHERE `Person`.`id` IS NOT NULL AND `Person`.`addressId` IS NOT NULL",
		engine.CountQuery(mysql, rel))

	node := env.file.Resources[0]
	assert.Equal(t, `SELECT "Address"."id" AS "id", "Address"."postcode" AS "postcode" FROM "main"."Address"`,
		engine.ProjectionQuery(env.dialect, node))
}
