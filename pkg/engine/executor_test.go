package engine

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fedecoop/padron/pkg/audit"
	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/domain"
	"github.com/fedecoop/padron/pkg/principal"
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

type stubSchemas struct {
	schema *catalog.TableSchema
	err    error
}

func (s stubSchemas) Get(ctx context.Context, table string) (*catalog.TableSchema, error) {
	return s.schema, s.err
}

type captureRecorder struct {
	entries []audit.Entry
}

func (r *captureRecorder) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func sociosSchema() *catalog.TableSchema {
	return &catalog.TableSchema{
		Name:       "socios",
		PrimaryKey: "Legajo",
		Columns: []catalog.ColumnDescriptor{
			{Name: "Legajo", Category: catalog.CategoryText, Ordinal: 1},
			{Name: "Cooperativa", Category: catalog.CategoryText, Ordinal: 2},
			{Name: "Matricula", Category: catalog.CategoryNumeric, Ordinal: 3},
			{Name: "FechaAlta", Category: catalog.CategoryDateTime, Ordinal: 4},
		},
		ForeignKeys: map[string]catalog.ForeignKey{},
	}
}

func newTestExecutor(t *testing.T, schema *catalog.TableSchema) (*Executor, sqlmock.Sqlmock, *captureRecorder) {
	t.Helper()
	db, mock := newMockDB(t)
	recorder := &captureRecorder{}
	exec := NewExecutor(db, stubSchemas{schema: schema}, NewEnricher(DefaultEntityTables), recorder, nil)
	return exec, mock, recorder
}

func sociosRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"Legajo", "Cooperativa", "Matricula", "FechaAlta"})
}

func TestCreate(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`INSERT INTO "socios" \("Legajo", "Cooperativa"\) VALUES \(\$1, \$2\) RETURNING \*`).
		WithArgs("100", "Test").
		WillReturnRows(sociosRow().AddRow("100", "Test", nil, nil))

	row, err := exec.Create(context.Background(), "socios", Record{
		"Legajo":      "100",
		"Cooperativa": "Test",
		"Matricula":   "",    // stripped before insert
		"FechaAlta":   nil,   // stripped before insert
		"_rowIndex":   int64(9), // bookkeeping never reaches the store
	})
	require.NoError(t, err)

	assert.Equal(t, "100", row["Legajo"])
	assert.Equal(t, "100", row[PrimaryKeyField])
	assert.Equal(t, 1, row[RowIndexField])

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, audit.ActionCreate, entry.Action)
	assert.Equal(t, "socios", entry.TableName)
	assert.Equal(t, "100", entry.RecordID)
	assert.Nil(t, entry.Before)
	assert.Equal(t, "Test", entry.After["Cooperativa"])
	assert.NotContains(t, entry.After, RowIndexField)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEmptyPayload(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	_, err := exec.Create(context.Background(), "socios", Record{
		"Legajo": "null",
		"Nombre": "undefined",
	})
	assert.True(t, domain.IsValidation(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownColumn(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	_, err := exec.Create(context.Background(), "socios", Record{"Inexistente": "x"})
	assert.True(t, domain.IsValidation(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateResolvesColumnCase(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`INSERT INTO "socios" \("Legajo"\) VALUES \(\$1\) RETURNING \*`).
		WithArgs("100").
		WillReturnRows(sociosRow().AddRow("100", nil, nil, nil))

	row, err := exec.Create(context.Background(), "socios", Record{"legajo": "100"})
	require.NoError(t, err)
	assert.Equal(t, "100", row["Legajo"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadEnriched(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`SELECT "socios"\.\*, "cooperativas"\."razon_social" AS "EntidadNombre", "cooperativas"\."localidad" AS "EntidadLocalidad" FROM "socios" LEFT JOIN "cooperativas" ON "socios"\."Matricula" = "cooperativas"\."matricula" ORDER BY "socios"\."Legajo" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"Legajo", "Cooperativa", "Matricula", "FechaAlta", "EntidadNombre", "EntidadLocalidad"}).
			AddRow("100", "Test", int64(500), nil, "Cooperativa Test Ltda", "Rosario").
			AddRow("101", "Otra", nil, nil, nil, nil))

	result, err := exec.Read(context.Background(), "socios")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "Legajo", result.PrimaryKey)

	first := result.Rows[0]
	assert.Equal(t, "100", first[PrimaryKeyField])
	assert.Equal(t, 1, first[RowIndexField])
	assert.Equal(t, "Cooperativa Test Ltda", first[EntityNameField])

	second := result.Rows[1]
	assert.Equal(t, 2, second[RowIndexField])
	assert.Nil(t, second[EntityNameField])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadWithoutEnrichment(t *testing.T) {
	schema := &catalog.TableSchema{
		Name:       "localidades",
		PrimaryKey: "id",
		Columns: []catalog.ColumnDescriptor{
			{Name: "id", Category: catalog.CategoryNumeric, Ordinal: 1},
			{Name: "nombre", Category: catalog.CategoryText, Ordinal: 2},
		},
		ForeignKeys: map[string]catalog.ForeignKey{},
	}
	exec, mock, _ := newTestExecutor(t, schema)

	mock.ExpectQuery(`SELECT "localidades"\.\* FROM "localidades" ORDER BY "localidades"\."id" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre"}).AddRow(int64(1), "Rosario"))

	result, err := exec.Read(context.Background(), "localidades")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, int64(1), result.Rows[0][PrimaryKeyField])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchNumericExact(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`FROM "socios" LEFT JOIN "cooperativas" .* WHERE "socios"\."Matricula" = \$1 ORDER BY`).
		WithArgs(int64(500)).
		WillReturnRows(sociosRow().AddRow("100", "Test", int64(500), nil))

	result, err := exec.Search(context.Background(), "socios", "Matricula", "500")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchTextSubstring(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`WHERE "socios"\."Cooperativa" ILIKE \$1 ORDER BY`).
		WithArgs("%tes%").
		WillReturnRows(sociosRow().AddRow("100", "Test", nil, nil))

	result, err := exec.Search(context.Background(), "socios", "cooperativa", "tes")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchUnknownField(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	_, err := exec.Search(context.Background(), "socios", "Inexistente", "x")
	assert.True(t, domain.IsValidation(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRange(t *testing.T) {
	exec, mock, _ := newTestExecutor(t, sociosSchema())

	mock.ExpectQuery(`WHERE "socios"\."FechaAlta"::date >= \$1 AND "socios"\."FechaAlta"::date <= \$2 ORDER BY`).
		WithArgs("2023-01-01", "2023-12-31").
		WillReturnRows(sociosRow())

	result, err := exec.SearchRange(context.Background(), "socios", "FechaAlta", "2023-01-01", "2023-12-31")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "socios" WHERE "Legajo" ILIKE \$1 FOR UPDATE`).
		WithArgs("%100%").
		WillReturnRows(sociosRow().AddRow("100", "Test", nil, nil))
	mock.ExpectQuery(`UPDATE "socios" SET "Cooperativa" = \$1 WHERE "Legajo" ILIKE \$2 RETURNING \*`).
		WithArgs("Renamed", "%100%").
		WillReturnRows(sociosRow().AddRow("100", "Renamed", nil, nil))
	mock.ExpectCommit()

	ctx := principal.WithContext(context.Background(), &principal.Principal{
		ID: "u1", Email: "op@example.test", DisplayName: "Op", Role: principal.RoleOperator,
	})

	row, err := exec.Update(ctx, "socios", "Legajo", "100", Record{"Cooperativa": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", row["Cooperativa"])
	assert.Equal(t, "100", row[PrimaryKeyField])

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, audit.ActionUpdate, entry.Action)
	assert.Equal(t, "u1", entry.ActorID)
	assert.Equal(t, "Test", entry.Before["Cooperativa"])
	assert.Equal(t, "Renamed", entry.After["Cooperativa"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAmbiguousMatch(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("%test%").
		WillReturnRows(sociosRow().
			AddRow("100", "Test", nil, nil).
			AddRow("101", "Test SA", nil, nil))
	mock.ExpectRollback()

	_, err := exec.Update(context.Background(), "socios", "Cooperativa", "test", Record{"Cooperativa": "X"})
	assert.True(t, domain.IsValidation(err), "got %v", err)
	assert.Empty(t, recorder.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFound(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("%999%").
		WillReturnRows(sociosRow())
	mock.ExpectRollback()

	_, err := exec.Update(context.Background(), "socios", "Legajo", "999", Record{"Cooperativa": "X"})
	assert.True(t, domain.IsNotFound(err), "got %v", err)
	assert.Empty(t, recorder.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "socios" WHERE "Legajo" ILIKE \$1 FOR UPDATE`).
		WithArgs("%100%").
		WillReturnRows(sociosRow().AddRow("100", "Test", nil, nil))
	mock.ExpectExec(`DELETE FROM "socios" WHERE "Legajo" ILIKE \$1`).
		WithArgs("%100%").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	row, err := exec.Delete(context.Background(), "socios", "Legajo", "100")
	require.NoError(t, err)
	assert.Equal(t, "Test", row["Cooperativa"])

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, audit.ActionDelete, entry.Action)
	assert.Equal(t, "100", entry.RecordID)
	assert.Equal(t, "Test", entry.Before["Cooperativa"])
	assert.Nil(t, entry.After)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	exec, mock, recorder := newTestExecutor(t, sociosSchema())

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("%999%").
		WillReturnRows(sociosRow())
	mock.ExpectRollback()

	_, err := exec.Delete(context.Background(), "socios", "Legajo", "999")
	assert.True(t, domain.IsNotFound(err), "got %v", err)
	assert.Empty(t, recorder.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationsSurfaceSchemaLookupError(t *testing.T) {
	db, _ := newMockDB(t)
	exec := NewExecutor(db, stubSchemas{err: domain.ErrNotFound("table %q does not exist", "nada")}, nil, nil, nil)

	_, err := exec.Read(context.Background(), "nada")
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}
