package metadata

import (
	"fmt"
	"strings"
)

// SQLDataType is a normalized (lower case) source column type, e.g. "varchar", "tinyint".
type SQLDataType string

const TinyInt SQLDataType = "tinyint"

// GraphDataType is a property type understood by the bulk import tool header.
type GraphDataType string

const (
	GraphInt     GraphDataType = "int"
	GraphLong    GraphDataType = "long"
	GraphFloat   GraphDataType = "float"
	GraphDouble  GraphDataType = "double"
	GraphBoolean GraphDataType = "boolean"
	GraphByte    GraphDataType = "byte"
	GraphShort   GraphDataType = "short"
	GraphChar    GraphDataType = "char"
	GraphString  GraphDataType = "string"
)

var graphTypes = map[SQLDataType]GraphDataType{
	// numeric
	"tinyint":          GraphByte,
	"smallint":         GraphShort,
	"mediumint":        GraphInt,
	"int":              GraphInt,
	"integer":          GraphInt,
	"year":             GraphInt,
	"bigint":           GraphLong,
	"serial":           GraphInt,
	"bigserial":        GraphLong,
	"float":            GraphFloat,
	"real":             GraphFloat,
	"double":           GraphDouble,
	"double precision": GraphDouble,
	"decimal":          GraphDouble,
	"numeric":          GraphDouble,
	"money":            GraphDouble,

	// boolean
	"bit":     GraphBoolean,
	"bool":    GraphBoolean,
	"boolean": GraphBoolean,
}

// GraphType maps the source type onto a graph property type. Everything that is not
// numeric or boolean (text, temporal, binary, json) is exported as a string.
func (t SQLDataType) GraphType() GraphDataType {
	if g, ok := graphTypes[SQLDataType(strings.ToLower(string(t)))]; ok {
		return g
	}
	return GraphString
}

// TinyIntAs selects how single-byte integers are exported.
type TinyIntAs string

const (
	TinyIntAsByte    TinyIntAs = "byte"
	TinyIntAsBoolean TinyIntAs = "boolean"
)

func ParseTinyIntAs(s string) (TinyIntAs, error) {
	switch TinyIntAs(strings.ToLower(strings.TrimSpace(s))) {
	case "", TinyIntAsByte:
		return TinyIntAsByte, nil
	case TinyIntAsBoolean:
		return TinyIntAsBoolean, nil
	default:
		return "", fmt.Errorf("invalid tiny int mode %q (expected byte or boolean)", s)
	}
}

// TinyIntResolver applies the caller's tinyint choice to both the header type and the
// exported cell values.
type TinyIntResolver struct {
	as TinyIntAs
}

func NewTinyIntResolver(as TinyIntAs) TinyIntResolver {
	return TinyIntResolver{as: as}
}

func (r TinyIntResolver) Mode() TinyIntAs {
	if r.as == "" {
		return TinyIntAsByte
	}
	return r.as
}

func (r TinyIntResolver) GraphType(t SQLDataType) GraphDataType {
	if r.asBoolean(t) {
		return GraphBoolean
	}
	return t.GraphType()
}

// Value converts a raw cell. Empty stays empty (NULL).
func (r TinyIntResolver) Value(t SQLDataType, raw string) string {
	if !r.asBoolean(t) || raw == "" {
		return raw
	}
	if raw == "0" || strings.EqualFold(raw, "false") {
		return "false"
	}
	return "true"
}

func (r TinyIntResolver) asBoolean(t SQLDataType) bool {
	return r.as == TinyIntAsBoolean && strings.EqualFold(string(t), string(TinyInt))
}
