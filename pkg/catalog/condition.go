package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Condition is a single parameterized search predicate. SQL uses the
// driver's positional placeholder; Args holds the bound values in order.
// Conditions are transient, per-request values and are never persisted.
type Condition struct {
	SQL  string
	Args []interface{}
}

// truthyValues is the fixed vocabulary accepted as boolean true in search
// input, compared case-insensitively. Everything else coerces to false.
var truthyValues = map[string]struct{}{
	"true":      {},
	"1":         {},
	"sí":        {},
	"si":        {},
	"yes":       {},
	"t":         {},
	"verdadero": {},
}

// BuildCondition produces the predicate for searching one column with raw
// free-text input. Comparison semantics follow the column's type category:
//
//   - Numeric: exact equality when the input parses as a number, otherwise
//     cast-to-text substring, so a numeric column is still searchable by a
//     partial token.
//   - Boolean: equality against the coerced truthy vocabulary.
//   - Date/time: always cast-to-text substring. Temporal input is never
//     parsed; partial matches like "2023-04" are the supported idiom and the
//     imprecision of, say, "12" matching both a day and an hour is accepted.
//   - UUID: exact equality for a well-formed 36-character hyphenated value,
//     substring otherwise.
//   - Enum, JSON, array, and anything unrecognized: cast-to-text substring.
//     An unrecognized column type is never rejected.
//   - Native text: direct case-insensitive substring, no cast.
//
// The column name is quoted as an opaque identifier and the value is always
// bound as a parameter; caller input never reaches the predicate text.
func BuildCondition(col ColumnDescriptor, raw string) Condition {
	return buildCondition("", col, raw)
}

// BuildQualifiedCondition is BuildCondition with the column qualified by its
// table, for queries where an enrichment join could make the bare column
// name ambiguous.
func BuildQualifiedCondition(table string, col ColumnDescriptor, raw string) Condition {
	return buildCondition(table, col, raw)
}

func buildCondition(table string, col ColumnDescriptor, raw string) Condition {
	quoted := quoteColumn(table, col.Name)

	switch col.Category {
	case CategoryNumeric:
		trimmed := strings.TrimSpace(raw)
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return Condition{SQL: quoted + " = ?", Args: []interface{}{n}}
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return Condition{SQL: quoted + " = ?", Args: []interface{}{f}}
		}
		return textCastCondition(quoted, raw)

	case CategoryBoolean:
		_, truthy := truthyValues[strings.ToLower(strings.TrimSpace(raw))]
		return Condition{SQL: quoted + " = ?", Args: []interface{}{truthy}}

	case CategoryUUID:
		if len(raw) == 36 && strings.Contains(raw, "-") {
			if _, err := uuid.Parse(raw); err == nil {
				return Condition{SQL: quoted + " = ?", Args: []interface{}{raw}}
			}
		}
		return textCastCondition(quoted, raw)

	case CategoryText:
		return Condition{SQL: quoted + " ILIKE ?", Args: []interface{}{substring(raw)}}

	case CategoryDateTime, CategoryEnum, CategoryJSON, CategoryArray, CategoryOther:
		return textCastCondition(quoted, raw)

	default:
		return textCastCondition(quoted, raw)
	}
}

// BuildDateRange produces the conjunction of predicates for a date-span
// search over one column. Either bound may be empty; an empty bound emits no
// predicate.
func BuildDateRange(col ColumnDescriptor, from, to string) []Condition {
	return buildDateRange("", col, from, to)
}

// BuildQualifiedDateRange is BuildDateRange with the column qualified by its
// table.
func BuildQualifiedDateRange(table string, col ColumnDescriptor, from, to string) []Condition {
	return buildDateRange(table, col, from, to)
}

func buildDateRange(table string, col ColumnDescriptor, from, to string) []Condition {
	quoted := quoteColumn(table, col.Name)

	var conditions []Condition
	if from != "" {
		conditions = append(conditions, Condition{
			SQL:  fmt.Sprintf("%s::date >= ?", quoted),
			Args: []interface{}{from},
		})
	}
	if to != "" {
		conditions = append(conditions, Condition{
			SQL:  fmt.Sprintf("%s::date <= ?", quoted),
			Args: []interface{}{to},
		})
	}
	return conditions
}

func quoteColumn(table, column string) string {
	if table == "" {
		return pq.QuoteIdentifier(column)
	}
	return pq.QuoteIdentifier(table) + "." + pq.QuoteIdentifier(column)
}

func textCastCondition(quotedColumn, raw string) Condition {
	return Condition{
		SQL:  fmt.Sprintf("CAST(%s AS TEXT) ILIKE ?", quotedColumn),
		Args: []interface{}{substring(raw)},
	}
}

func substring(raw string) string {
	return "%" + raw + "%"
}
