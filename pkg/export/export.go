// Package export renders result sets as delimited text for download and for
// the spool-driven file exports the CLI produces.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/engine"
)

// Options controls the rendered output.
type Options struct {
	// Delimiter separates fields; the zero value means comma.
	Delimiter rune
	// LeadingColumn, when it names a column of the schema, is pulled to the
	// front of the header. Matched case-insensitively.
	LeadingColumn string
	// IncludeEnrichment appends the entity display columns when the rows
	// carry them.
	IncludeEnrichment bool
}

// Write renders the rows as delimited text. Columns follow the schema's
// ordinal order with the preferred leading column pulled to the front; the
// engine's bookkeeping fields are never exported. Values are formatted with
// their default Go rendering; nil becomes the empty field.
func Write(w io.Writer, schema *catalog.TableSchema, rows []engine.Record, opts Options) error {
	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	header := columnOrder(schema, opts)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			record[i] = formatValue(row[name])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func columnOrder(schema *catalog.TableSchema, opts Options) []string {
	names := make([]string, 0, len(schema.Columns)+2)
	var leading string
	for _, col := range schema.Columns {
		if leading == "" && strings.EqualFold(col.Name, opts.LeadingColumn) {
			leading = col.Name
			continue
		}
		names = append(names, col.Name)
	}
	if leading != "" {
		names = append([]string{leading}, names...)
	}
	if opts.IncludeEnrichment {
		names = append(names, engine.EntityNameField, engine.EntityLocalityField)
	}
	return names
}

func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
