package dialect

import (
	"fmt"
	"strings"
)

// OracleDialect inspects the tables owned by the connected user. go-ora binds positional
// arguments in order of appearance, so every query consumes its arguments left to right.
type OracleDialect struct{}

const oracleForeignKeys = `SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.POSITION,
        r.OWNER AS REFERENCED_TABLE_SCHEMA, r.TABLE_NAME AS REFERENCED_TABLE_NAME, rcc.COLUMN_NAME AS REFERENCED_COLUMN_NAME
    FROM USER_CONSTRAINTS c
    JOIN USER_CONS_COLUMNS cc
        ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
        AND c.OWNER = cc.OWNER
    JOIN USER_CONSTRAINTS r
        ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME
        AND c.R_OWNER = r.OWNER
    JOIN USER_CONS_COLUMNS rcc
        ON r.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME
        AND r.OWNER = rcc.OWNER
        AND cc.POSITION = rcc.POSITION
    WHERE c.CONSTRAINT_TYPE = 'R'`

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) TablesQuery() string {
	// Dummy clause consumes the schema argument.
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL ORDER BY TABLE_NAME`
}

func (d *OracleDialect) ColumnsQuery() string {
	return `
SELECT
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END AS DATA_TYPE,
    CASE WHEN p.CONSTRAINT_NAME IS NOT NULL THEN 'PRI' ELSE NULL END AS COLUMN_KEY,
    f.REFERENCED_TABLE_SCHEMA,
    f.REFERENCED_TABLE_NAME,
    f.REFERENCED_COLUMN_NAME
FROM USER_TAB_COLUMNS t
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) p ON t.TABLE_NAME = p.TABLE_NAME AND t.COLUMN_NAME = p.COLUMN_NAME
LEFT JOIN (` + oracleForeignKeys + `) f ON t.TABLE_NAME = f.TABLE_NAME AND t.COLUMN_NAME = f.COLUMN_NAME
WHERE :1 IS NOT NULL AND t.TABLE_NAME = :2
ORDER BY t.COLUMN_ID`
}

func (d *OracleDialect) RelationshipsQuery() string {
	return fmt.Sprintf(`
SELECT :1 AS SOURCE_TABLE_SCHEMA, f.TABLE_NAME AS SOURCE_TABLE_NAME, f.COLUMN_NAME AS SOURCE_COLUMN_NAME,
    f.REFERENCED_TABLE_SCHEMA AS TARGET_TABLE_SCHEMA, f.REFERENCED_TABLE_NAME AS TARGET_TABLE_NAME, f.REFERENCED_COLUMN_NAME AS TARGET_COLUMN_NAME
FROM (%s) f
WHERE f.TABLE_NAME IN (%s) OR f.REFERENCED_TABLE_NAME IN (%s)
ORDER BY f.TABLE_NAME, f.POSITION`,
		oracleForeignKeys, GeneratePlaceholders(1, 2, d.Placeholder), GeneratePlaceholders(3, 2, d.Placeholder))
}

func (d *OracleDialect) CurrentSchemaQuery() string {
	return "SELECT USER FROM DUAL"
}

// SessionStatements standardizes date rendering on ISO-8601-like text.
func (d *OracleDialect) SessionStatements() []string {
	return []string{
		"ALTER SESSION SET NLS_DATE_FORMAT = 'YYYY-MM-DD HH24:MI:SS'",
		"ALTER SESSION SET NLS_TIMESTAMP_FORMAT = 'YYYY-MM-DD HH24:MI:SS'",
	}
}

func (d *OracleDialect) QuoteIdentifier(name string) string {
	return quoteWith(`"`, `"`, name)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := DefaultNormalizeType(sqlType)
	switch {
	case s == "decimal" || s == "float" || s == "binary_double" || s == "binary_float":
		return "decimal"
	case strings.Contains(s, "char") || strings.Contains(s, "clob"):
		return "varchar"
	case strings.Contains(s, "int") || strings.Contains(s, "number"):
		return "bigint"
	case strings.Contains(s, "date") || strings.Contains(s, "time"):
		return "datetime"
	default:
		return s
	}
}

func (d *OracleDialect) DefaultSchema(input string) string {
	return strings.ToUpper(input)
}

func (d *OracleDialect) LimitQuery(query string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", query, limit)
}
