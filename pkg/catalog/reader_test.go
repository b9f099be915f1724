package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fedecoop/padron/pkg/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}
	return gormDB, mock
}

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"column_name", "data_type", "udt_name", "is_nullable", "has_default",
		"character_maximum_length", "ordinal_position",
	})
}

func TestDescribe(t *testing.T) {
	db, mock := newMockDB(t)
	reader := NewReader(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("public", "socios").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`information_schema\.columns`).
		WithArgs("public", "socios").
		WillReturnRows(columnRows().
			AddRow("Legajo", "character varying", "varchar", false, false, int64(50), 1).
			AddRow("Cooperativa", "character varying", "varchar", true, false, int64(200), 2).
			AddRow("FechaAlta", "timestamp without time zone", "timestamp", true, true, nil, 3).
			AddRow("Matricula", "integer", "int4", true, false, nil, 4))

	mock.ExpectQuery(`PRIMARY KEY`).
		WithArgs("public", "socios").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("Legajo"))

	mock.ExpectQuery(`FOREIGN KEY`).
		WithArgs("public", "socios").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "target_table", "target_column"}).
			AddRow("Matricula", "cooperativas", "matricula"))

	schema, err := reader.Describe(context.Background(), "socios")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	if schema.Name != "socios" {
		t.Errorf("unexpected table name %q", schema.Name)
	}
	if len(schema.Columns) != 4 {
		t.Fatalf("want 4 columns, got %d", len(schema.Columns))
	}
	if schema.PrimaryKey != "Legajo" {
		t.Errorf("primary key = %q, want Legajo", schema.PrimaryKey)
	}

	legajo := schema.Columns[0]
	if legajo.Category != CategoryText || legajo.Nullable || legajo.MaxLength == nil || *legajo.MaxLength != 50 {
		t.Errorf("unexpected Legajo descriptor: %+v", legajo)
	}
	fecha := schema.Columns[2]
	if fecha.Category != CategoryDateTime || !fecha.HasDefault || fecha.MaxLength != nil {
		t.Errorf("unexpected FechaAlta descriptor: %+v", fecha)
	}

	fk, ok := schema.ForeignKeys["Matricula"]
	if !ok {
		t.Fatal("missing Matricula foreign key")
	}
	if fk.TargetTable != "cooperativas" || fk.TargetColumn != "matricula" {
		t.Errorf("unexpected foreign key: %+v", fk)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDescribeTableNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	reader := NewReader(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("public", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := reader.Describe(context.Background(), "nope")
	if !domain.IsNotFound(err) {
		t.Errorf("want NotFoundError, got %v", err)
	}
}

func TestDescribeZeroColumnsIsSchemaError(t *testing.T) {
	db, mock := newMockDB(t)
	reader := NewReader(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("public", "fantasma").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`information_schema\.columns`).
		WithArgs("public", "fantasma").
		WillReturnRows(columnRows())

	_, err := reader.Describe(context.Background(), "fantasma")
	if !domain.IsSchema(err) {
		t.Errorf("want SchemaError, got %v", err)
	}
}

func TestResolvePrimaryKeyFallbackOrder(t *testing.T) {
	cols := func(names ...string) []ColumnDescriptor {
		out := make([]ColumnDescriptor, len(names))
		for i, n := range names {
			out[i] = ColumnDescriptor{Name: n, Ordinal: i + 1}
		}
		return out
	}

	tests := []struct {
		name     string
		declared string
		columns  []ColumnDescriptor
		want     string
	}{
		{"declared key wins", "Legajo", cols("Nombre", "id", "Legajo"), "Legajo"},
		{"exact id beats substring id", "", cols("partido", "id"), "id"},
		{"exact id is case-insensitive", "", cols("Nombre", "ID"), "ID"},
		{"substring id when no exact", "", cols("Nombre", "identificador"), "identificador"},
		{"first column when nothing id-like", "", cols("Nombre", "Telefono"), "Nombre"},
		{"no columns", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePrimaryKey(tt.declared, tt.columns); got != tt.want {
				t.Errorf("resolvePrimaryKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
