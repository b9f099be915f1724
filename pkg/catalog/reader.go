package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/fedecoop/padron/pkg/domain"
)

// Reader queries the backing store's system catalog to describe tables on
// demand. It holds no state beyond the shared connection; all results are
// cached by the Registry, not here.
type Reader struct {
	db        *gorm.DB
	namespace string
}

// NewReader creates a Reader over the given connection, introspecting the
// "public" schema namespace.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db, namespace: "public"}
}

// NewReaderForNamespace creates a Reader scoped to a non-default schema
// namespace.
func NewReaderForNamespace(db *gorm.DB, namespace string) *Reader {
	return &Reader{db: db, namespace: namespace}
}

const tableExistsQuery = `
	SELECT COUNT(*)
	FROM information_schema.tables
	WHERE table_schema = ? AND table_name = ?
`

const columnsQuery = `
	SELECT
		column_name,
		data_type,
		udt_name,
		is_nullable = 'YES' AS is_nullable,
		column_default IS NOT NULL AS has_default,
		character_maximum_length,
		ordinal_position
	FROM information_schema.columns
	WHERE table_schema = ? AND table_name = ?
	ORDER BY ordinal_position
`

const primaryKeyQuery = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON tc.constraint_name = kcu.constraint_name
	 AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY'
	  AND tc.table_schema = ?
	  AND tc.table_name = ?
	ORDER BY kcu.ordinal_position
	LIMIT 1
`

const foreignKeysQuery = `
	SELECT
		kcu.column_name,
		ccu.table_name AS target_table,
		ccu.column_name AS target_column
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON tc.constraint_name = kcu.constraint_name
	 AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage ccu
	  ON ccu.constraint_name = tc.constraint_name
	 AND ccu.table_schema = tc.table_schema
	WHERE tc.constraint_type = 'FOREIGN KEY'
	  AND tc.table_schema = ?
	  AND tc.table_name = ?
	ORDER BY kcu.column_name
`

// Describe resolves the full TableSchema for the named table. It returns a
// NotFoundError when the table is absent from the catalog and a SchemaError
// when a table known to exist reports zero columns.
func (r *Reader) Describe(ctx context.Context, table string) (*TableSchema, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(tableExistsQuery, r.namespace, table).Scan(&count).Error; err != nil {
		return nil, fmt.Errorf("catalog lookup for table %q: %w", table, err)
	}
	if count == 0 {
		return nil, domain.ErrNotFound("table %q not found in catalog", table)
	}

	columns, err := r.readColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, domain.ErrSchema("catalog returned no columns for table %q", table)
	}

	declaredPK, err := r.readPrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}

	foreignKeys, err := r.readForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	return &TableSchema{
		Name:        table,
		Columns:     columns,
		PrimaryKey:  resolvePrimaryKey(declaredPK, columns),
		ForeignKeys: foreignKeys,
	}, nil
}

func (r *Reader) readColumns(ctx context.Context, table string) ([]ColumnDescriptor, error) {
	rows, err := r.db.WithContext(ctx).Raw(columnsQuery, r.namespace, table).Rows()
	if err != nil {
		return nil, fmt.Errorf("column introspection for table %q: %w", table, err)
	}
	defer rows.Close()

	var columns []ColumnDescriptor
	for rows.Next() {
		var (
			col       ColumnDescriptor
			maxLength sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.DeclaredType, &col.UDTName, &col.Nullable, &col.HasDefault, &maxLength, &col.Ordinal); err != nil {
			return nil, fmt.Errorf("scanning column of table %q: %w", table, err)
		}
		if maxLength.Valid {
			length := maxLength.Int64
			col.MaxLength = &length
		}
		col.Category = CategoryOf(col.DeclaredType, col.UDTName)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (r *Reader) readPrimaryKey(ctx context.Context, table string) (string, error) {
	rows, err := r.db.WithContext(ctx).Raw(primaryKeyQuery, r.namespace, table).Rows()
	if err != nil {
		return "", fmt.Errorf("primary key introspection for table %q: %w", table, err)
	}
	defer rows.Close()

	var pk string
	if rows.Next() {
		if err := rows.Scan(&pk); err != nil {
			return "", fmt.Errorf("scanning primary key of table %q: %w", table, err)
		}
	}
	return pk, rows.Err()
}

func (r *Reader) readForeignKeys(ctx context.Context, table string) (map[string]ForeignKey, error) {
	rows, err := r.db.WithContext(ctx).Raw(foreignKeysQuery, r.namespace, table).Rows()
	if err != nil {
		return nil, fmt.Errorf("foreign key introspection for table %q: %w", table, err)
	}
	defer rows.Close()

	foreignKeys := map[string]ForeignKey{}
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scanning foreign key of table %q: %w", table, err)
		}
		foreignKeys[fk.Column] = fk
	}
	return foreignKeys, rows.Err()
}
