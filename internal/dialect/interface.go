package dialect

// Dialect abstracts database-specific SQL used to inspect a source schema and to read rows
// out of it.
//
// Metadata query contracts (column aliases are matched case-insensitively):
//   - TablesQuery(schema): TABLE_NAME
//   - ColumnsQuery(schema, table): COLUMN_NAME, DATA_TYPE, COLUMN_KEY ("PRI" for primary
//     key columns), REFERENCED_TABLE_SCHEMA, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
//   - RelationshipsQuery(schema, a, b, a, b): SOURCE_TABLE_SCHEMA, SOURCE_TABLE_NAME,
//     SOURCE_COLUMN_NAME, TARGET_TABLE_SCHEMA, TARGET_TABLE_NAME, TARGET_COLUMN_NAME for every
//     foreign key whose source is a or b, or whose target is a or b.
type Dialect interface {
	Name() string

	// Metadata Queries (Schema Introspection)
	TablesQuery() string
	ColumnsQuery() string
	RelationshipsQuery() string
	CurrentSchemaQuery() string

	// Export
	SessionStatements() []string
	QuoteIdentifier(name string) string
	Placeholder(index int) string // Returns ?, $1, @p1, etc.
	LimitQuery(query string, limit int) string

	// Helpers
	NormalizeType(sqlType string) string
	DefaultSchema(input string) string
}
