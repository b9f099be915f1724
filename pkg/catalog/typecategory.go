package catalog

import "strings"

//go:generate go run github.com/dmarkham/enumer -type TypeCategory -trimprefix Category -transform lower -output typecategory_enumer.go

// TypeCategory is the closed set of comparison families the condition
// builder dispatches over. It is derived once per column from the catalog's
// raw type string when the schema is read, so no call site ever re-parses
// the declared type.
type TypeCategory int

const (
	CategoryNumeric TypeCategory = iota
	CategoryBoolean
	CategoryDateTime
	CategoryEnum
	CategoryUUID
	CategoryJSON
	CategoryArray
	CategoryText
	CategoryOther
)

// CategoryOf maps an information_schema data_type (plus udt_name for
// USER-DEFINED types) to its TypeCategory. Unrecognized types land in
// CategoryOther, which searches as cast-to-text substring; a column is never
// rejected for having an unknown type.
func CategoryOf(dataType, udtName string) TypeCategory {
	dt := strings.ToLower(strings.TrimSpace(dataType))

	switch dt {
	case "smallint", "integer", "bigint", "int", "int2", "int4", "int8",
		"numeric", "decimal", "real", "double precision", "money",
		"smallserial", "serial", "bigserial", "float":
		return CategoryNumeric
	case "boolean", "bool":
		return CategoryBoolean
	case "date", "interval":
		return CategoryDateTime
	case "uuid":
		return CategoryUUID
	case "json", "jsonb":
		return CategoryJSON
	case "array":
		return CategoryArray
	case "character varying", "character", "varchar", "char", "text",
		"citext", "name", "bpchar":
		return CategoryText
	case "user-defined":
		// citext ships as USER-DEFINED in some catalogs
		if strings.EqualFold(udtName, "citext") {
			return CategoryText
		}
		return CategoryEnum
	}

	if strings.HasPrefix(dt, "timestamp") || strings.HasPrefix(dt, "time") {
		return CategoryDateTime
	}
	if strings.HasSuffix(dt, "[]") {
		return CategoryArray
	}

	return CategoryOther
}
