package dialect

import "fmt"

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) TablesQuery() string {
	return `SELECT table_name AS TABLE_NAME FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`
}

// postgresForeignKeys lists single-column foreign key edges of the whole database.
const postgresForeignKeys = `SELECT kcu.table_schema, kcu.table_name, kcu.column_name, kcu.ordinal_position,
        ccu.table_schema AS target_schema, ccu.table_name AS target_table, ccu.column_name AS target_column
    FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
        ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
    JOIN information_schema.constraint_column_usage ccu
        ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.constraint_schema
    WHERE tc.constraint_type = 'FOREIGN KEY'`

func (d *PostgresDialect) ColumnsQuery() string {
	// Subquery used to fetch the PRIMARY KEY flag, mirroring MySQL's COLUMN_KEY.
	return `SELECT
    c.column_name AS COLUMN_NAME,
    c.udt_name AS DATA_TYPE,
    (SELECT 'PRI' FROM information_schema.table_constraints tc
     JOIN information_schema.key_column_usage kcu
        ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
     WHERE tc.constraint_type = 'PRIMARY KEY'
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS COLUMN_KEY,
    fk.target_schema AS REFERENCED_TABLE_SCHEMA,
    fk.target_table AS REFERENCED_TABLE_NAME,
    fk.target_column AS REFERENCED_COLUMN_NAME
FROM information_schema.columns c
LEFT JOIN (` + postgresForeignKeys + `) fk
    ON fk.table_schema = c.table_schema AND fk.table_name = c.table_name AND fk.column_name = c.column_name
WHERE c.table_schema = $1 AND c.table_name = $2
ORDER BY c.ordinal_position`
}

func (d *PostgresDialect) RelationshipsQuery() string {
	return fmt.Sprintf(`SELECT fk.table_schema AS SOURCE_TABLE_SCHEMA, fk.table_name AS SOURCE_TABLE_NAME, fk.column_name AS SOURCE_COLUMN_NAME,
    fk.target_schema AS TARGET_TABLE_SCHEMA, fk.target_table AS TARGET_TABLE_NAME, fk.target_column AS TARGET_COLUMN_NAME
FROM (%s) fk
WHERE fk.table_schema = $1 AND (fk.table_name IN (%s) OR fk.target_table IN (%s))
ORDER BY fk.table_name, fk.ordinal_position`,
		postgresForeignKeys, GeneratePlaceholders(1, 2, d.Placeholder), GeneratePlaceholders(3, 2, d.Placeholder))
}

func (d *PostgresDialect) CurrentSchemaQuery() string {
	return "SELECT current_schema()"
}

func (d *PostgresDialect) SessionStatements() []string {
	return []string{"SET DateStyle = 'ISO, YMD'"}
}

func (d *PostgresDialect) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) NormalizeType(sqlType string) string {
	t := DefaultNormalizeType(sqlType)
	switch t {
	case "int4":
		return "int"
	case "int2":
		return "smallint"
	case "int8":
		return "bigint"
	case "float4":
		return "float"
	case "float8":
		return "double"
	case "bool":
		return "boolean"
	case "bpchar":
		return "char"
	default:
		return t
	}
}

func (d *PostgresDialect) DefaultSchema(input string) string {
	return DefaultSchemaOr(input, "public")
}

func (d *PostgresDialect) LimitQuery(query string, limit int) string {
	return limitClause(query, limit)
}
