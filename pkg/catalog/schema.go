package catalog

import "strings"

// ForeignKey describes a single foreign-key edge from a column to a target
// table's column.
type ForeignKey struct {
	Column       string
	TargetTable  string
	TargetColumn string
}

// ColumnDescriptor describes one column of a table as reported by the
// store's catalog.
type ColumnDescriptor struct {
	Name         string
	DeclaredType string
	UDTName      string
	Category     TypeCategory
	Nullable     bool
	HasDefault   bool
	MaxLength    *int64
	Ordinal      int
}

// TableSchema is the resolved metadata for one table. Values are computed
// once by the Reader and held immutably by the Registry; a cache entry is
// only ever replaced wholesale, never mutated in place.
type TableSchema struct {
	Name        string
	Columns     []ColumnDescriptor
	PrimaryKey  string
	ForeignKeys map[string]ForeignKey
}

// Column returns the descriptor for the named column, matching
// case-insensitively the way the store's catalog folds identifiers.
func (s *TableSchema) Column(name string) (ColumnDescriptor, bool) {
	for _, col := range s.Columns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}
	return ColumnDescriptor{}, false
}

// HasColumn reports whether the table has the named column.
func (s *TableSchema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// ColumnNames returns the column names in declaration order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// resolvePrimaryKey applies the documented fallback heuristic: the declared
// primary key wins; failing that, a column named exactly "id"; failing that,
// the first column whose name contains "id"; failing that, the first
// declared column. Some legacy tables in this domain carry no declared
// primary key at all, so the fallbacks are deliberate rather than defensive.
func resolvePrimaryKey(declared string, columns []ColumnDescriptor) string {
	if declared != "" {
		return declared
	}
	for _, col := range columns {
		if strings.EqualFold(col.Name, "id") {
			return col.Name
		}
	}
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col.Name), "id") {
			return col.Name
		}
	}
	if len(columns) > 0 {
		return columns[0].Name
	}
	return ""
}
