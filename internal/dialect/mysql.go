package dialect

import "fmt"

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) TablesQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) ColumnsQuery() string {
	// KEY_COLUMN_USAGE carries the REFERENCED_* columns directly in MySQL.
	return `SELECT c.COLUMN_NAME, c.DATA_TYPE, c.COLUMN_KEY,
    k.REFERENCED_TABLE_SCHEMA, k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME
FROM information_schema.COLUMNS c
LEFT JOIN information_schema.KEY_COLUMN_USAGE k
    ON k.TABLE_SCHEMA = c.TABLE_SCHEMA AND k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME
    AND k.REFERENCED_TABLE_NAME IS NOT NULL
WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`
}

func (d *MysqlDialect) RelationshipsQuery() string {
	return fmt.Sprintf(`SELECT TABLE_SCHEMA AS SOURCE_TABLE_SCHEMA, TABLE_NAME AS SOURCE_TABLE_NAME, COLUMN_NAME AS SOURCE_COLUMN_NAME,
    REFERENCED_TABLE_SCHEMA AS TARGET_TABLE_SCHEMA, REFERENCED_TABLE_NAME AS TARGET_TABLE_NAME, REFERENCED_COLUMN_NAME AS TARGET_COLUMN_NAME
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL
    AND (TABLE_NAME IN (%s) OR REFERENCED_TABLE_NAME IN (%s))
ORDER BY TABLE_NAME, ORDINAL_POSITION`,
		GeneratePlaceholders(1, 2, d.Placeholder), GeneratePlaceholders(3, 2, d.Placeholder))
}

func (d *MysqlDialect) CurrentSchemaQuery() string {
	return "SELECT DATABASE()"
}

func (d *MysqlDialect) SessionStatements() []string {
	return nil
}

func (d *MysqlDialect) QuoteIdentifier(name string) string {
	return quoteWith("`", "`", name)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) NormalizeType(sqlType string) string {
	return DefaultNormalizeType(sqlType)
}

func (d *MysqlDialect) DefaultSchema(input string) string {
	return input
}

func (d *MysqlDialect) LimitQuery(query string, limit int) string {
	return limitClause(query, limit)
}
