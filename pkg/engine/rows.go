package engine

import (
	"database/sql"
	"fmt"
	"strings"
)

// Bookkeeping fields the executor annotates onto every row it returns. They
// are stripped from any inbound payload before it touches the store.
const (
	// PrimaryKeyField carries the resolved primary-key value; it is the
	// row's identity.
	PrimaryKeyField = "_primaryKey"
	// RowIndexField is the 1-based position of the row in the current result
	// set. Display only; it is not stable across requests and is never used
	// for identity.
	RowIndexField = "_rowIndex"
)

// Record is a mapping of column name to scalar value for one row of a
// dynamically-described table. Column order is carried by the owning
// TableSchema, not by the map.
type Record map[string]interface{}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// stripBookkeeping removes the executor's annotation fields from an inbound
// payload.
func stripBookkeeping(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		if k == PrimaryKeyField || k == RowIndexField {
			continue
		}
		out[k] = v
	}
	return out
}

// stripEmpty drops fields whose value is nil, an empty string, or the
// literal strings "null"/"undefined" that untyped clients send for absent
// fields.
func stripEmpty(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			trimmed := strings.TrimSpace(s)
			if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// scanRecords reads every row into a Record, keyed by the result set's
// column names. Byte slices are folded to strings so snapshots and JSON
// responses carry readable values rather than base64 blobs.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}

	var records []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		record := make(Record, len(columns))
		for i, name := range columns {
			record[name] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
