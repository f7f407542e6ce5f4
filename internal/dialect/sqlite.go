package dialect

import "strings"

// SQLiteDialect reads metadata through the pragma table-valued functions. Numbered
// parameters (?1, ?2, ...) let one argument be referenced several times.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) TablesQuery() string {
	return `SELECT name AS TABLE_NAME FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND ?1 IS NOT NULL ORDER BY name`
}

func (d *SQLiteDialect) ColumnsQuery() string {
	return `SELECT c.name AS COLUMN_NAME, c.type AS DATA_TYPE,
    CASE WHEN c.pk > 0 THEN 'PRI' ELSE '' END AS COLUMN_KEY,
    CASE WHEN f."table" IS NULL THEN NULL ELSE ?1 END AS REFERENCED_TABLE_SCHEMA,
    f."table" AS REFERENCED_TABLE_NAME,
    f."to" AS REFERENCED_COLUMN_NAME
FROM pragma_table_info(?2, ?1) c
LEFT JOIN pragma_foreign_key_list(?2, ?1) f ON f."from" = c.name
ORDER BY c.cid`
}

func (d *SQLiteDialect) RelationshipsQuery() string {
	return `SELECT ?1 AS SOURCE_TABLE_SCHEMA, m.name AS SOURCE_TABLE_NAME, f."from" AS SOURCE_COLUMN_NAME,
    ?1 AS TARGET_TABLE_SCHEMA, f."table" AS TARGET_TABLE_NAME, f."to" AS TARGET_COLUMN_NAME
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name, ?1) f
WHERE m.type = 'table' AND (m.name IN (?2, ?3) OR f."table" IN (?4, ?5))
ORDER BY m.name, f.id, f.seq`
}

func (d *SQLiteDialect) CurrentSchemaQuery() string {
	return "SELECT 'main'"
}

func (d *SQLiteDialect) SessionStatements() []string {
	return nil
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}

// NormalizeType maps declared types onto their storage affinity.
func (d *SQLiteDialect) NormalizeType(sqlType string) string {
	t := DefaultNormalizeType(sqlType)
	switch {
	case t == "integer":
		return "bigint"
	case t == "":
		return "blob"
	case strings.Contains(t, "char") || strings.Contains(t, "clob") || strings.Contains(t, "text"):
		return "varchar"
	default:
		return t
	}
}

func (d *SQLiteDialect) DefaultSchema(input string) string {
	return DefaultSchemaOr(input, "main")
}

func (d *SQLiteDialect) LimitQuery(query string, limit int) string {
	return limitClause(query, limit)
}
