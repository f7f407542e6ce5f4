package dialect

import (
	"fmt"
	"strings"
)

type MSSQLDialect struct{}

// MSSQL Driver (go-mssqldb) binds positional arguments as @p1, @p2, ...

// mssqlForeignKeys pairs each referencing column with the referenced column of the same
// ordinal position.
const mssqlForeignKeys = `SELECT kcu1.TABLE_SCHEMA, kcu1.TABLE_NAME, kcu1.COLUMN_NAME, kcu1.ORDINAL_POSITION,
        kcu2.TABLE_SCHEMA AS REFERENCED_TABLE_SCHEMA, kcu2.TABLE_NAME AS REFERENCED_TABLE_NAME, kcu2.COLUMN_NAME AS REFERENCED_COLUMN_NAME
    FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
    JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu1
        ON rc.CONSTRAINT_NAME = kcu1.CONSTRAINT_NAME AND rc.CONSTRAINT_SCHEMA = kcu1.CONSTRAINT_SCHEMA
    JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu2
        ON rc.UNIQUE_CONSTRAINT_NAME = kcu2.CONSTRAINT_NAME AND rc.UNIQUE_CONSTRAINT_SCHEMA = kcu2.CONSTRAINT_SCHEMA
        AND kcu1.ORDINAL_POSITION = kcu2.ORDINAL_POSITION`

func (d *MSSQLDialect) Name() string { return "mssql" }

func (d *MSSQLDialect) TablesQuery() string {
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MSSQLDialect) ColumnsQuery() string {
	return `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRIMARY' ELSE '' END AS COLUMN_KEY,
			fk.REFERENCED_TABLE_SCHEMA,
			fk.REFERENCED_TABLE_NAME,
			fk.REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_SCHEMA, kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) pk ON c.TABLE_SCHEMA = pk.TABLE_SCHEMA AND c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
		LEFT JOIN (` + mssqlForeignKeys + `) fk
			ON c.TABLE_SCHEMA = fk.TABLE_SCHEMA AND c.TABLE_NAME = fk.TABLE_NAME AND c.COLUMN_NAME = fk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`
}

func (d *MSSQLDialect) RelationshipsQuery() string {
	return fmt.Sprintf(`SELECT fk.TABLE_SCHEMA AS SOURCE_TABLE_SCHEMA, fk.TABLE_NAME AS SOURCE_TABLE_NAME, fk.COLUMN_NAME AS SOURCE_COLUMN_NAME,
    fk.REFERENCED_TABLE_SCHEMA AS TARGET_TABLE_SCHEMA, fk.REFERENCED_TABLE_NAME AS TARGET_TABLE_NAME, fk.REFERENCED_COLUMN_NAME AS TARGET_COLUMN_NAME
FROM (%s) fk
WHERE fk.TABLE_SCHEMA = @p1 AND (fk.TABLE_NAME IN (%s) OR fk.REFERENCED_TABLE_NAME IN (%s))
ORDER BY fk.TABLE_NAME, fk.ORDINAL_POSITION`,
		mssqlForeignKeys, GeneratePlaceholders(1, 2, d.Placeholder), GeneratePlaceholders(3, 2, d.Placeholder))
}

func (d *MSSQLDialect) CurrentSchemaQuery() string {
	return "SELECT SCHEMA_NAME()"
}

func (d *MSSQLDialect) SessionStatements() []string {
	return []string{"SET DATEFORMAT ymd"}
}

func (d *MSSQLDialect) QuoteIdentifier(name string) string {
	return quoteWith("[", "]", name)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) NormalizeType(sqlType string) string {
	t := DefaultNormalizeType(sqlType)
	switch t {
	case "nvarchar", "nchar", "text", "ntext":
		return "varchar"
	case "bit":
		return "boolean"
	case "decimal", "numeric", "money", "smallmoney":
		return "decimal"
	case "datetime", "datetime2", "smalldatetime", "date":
		return "datetime"
	case "image", "binary", "varbinary":
		return "blob"
	default:
		return t
	}
}

func (d *MSSQLDialect) DefaultSchema(input string) string {
	return DefaultSchemaOr(input, "dbo")
}

func (d *MSSQLDialect) LimitQuery(query string, limit int) string {
	// Simple T-SQL TOP injection on the leading SELECT.
	trimmed := strings.TrimSpace(query)
	if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Sprintf("SELECT TOP %d%s", limit, trimmed[len("SELECT"):])
	}
	return query
}
