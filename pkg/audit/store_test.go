package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestSave(t *testing.T) {
	store, mock := newMockStore(t)

	occurredAt := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	entry := Entry{
		ActorID:          "u1",
		ActorEmail:       "op@example.test",
		ActorDisplayName: "Operadora",
		Action:           ActionUpdate,
		TableName:        "socios",
		RecordID:         "100",
		Before:           map[string]interface{}{"Cooperativa": "Test"},
		After:            map[string]interface{}{"Cooperativa": "Renamed"},
		OccurredAt:       occurredAt,
		SourceIP:         "10.0.0.7",
		UserAgent:        "padronctl/1.0",
		SessionContext:   "sess-1",
	}

	mock.ExpectQuery(`INSERT INTO audit_log`).
		WithArgs(
			"u1", "op@example.test", "Operadora",
			"UPDATE", "socios", "100",
			[]byte(`{"Cooperativa":"Test"}`),
			[]byte(`{"Cooperativa":"Renamed"}`),
			occurredAt, "10.0.0.7", "padronctl/1.0", "sess-1",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, store.Save(context.Background(), &entry))
	assert.Equal(t, int64(42), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveNilSnapshotsAreNull(t *testing.T) {
	store, mock := newMockStore(t)

	entry := Entry{
		Action:     ActionCreate,
		TableName:  "socios",
		RecordID:   "100",
		After:      map[string]interface{}{"Legajo": "100"},
		OccurredAt: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC),
	}

	mock.ExpectQuery(`INSERT INTO audit_log`).
		WithArgs(
			"", "", "",
			"CREATE", "socios", "100",
			nil,
			[]byte(`{"Legajo":"100"}`),
			entry.OccurredAt, "", "", "",
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, store.Save(context.Background(), &entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsMalformedEntry(t *testing.T) {
	store, mock := newMockStore(t)

	err := store.Save(context.Background(), &Entry{Action: ActionCreate, TableName: "socios"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func listColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "actor_id", "actor_email", "actor_display_name",
		"action", "table_name", "record_id",
		"before_snapshot", "after_snapshot",
		"occurred_at", "source_ip", "user_agent", "session_context",
	})
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)

	occurredAt := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM audit_log WHERE actor_email = \$1 AND table_name = \$2 ORDER BY occurred_at DESC, id DESC LIMIT \$3`).
		WithArgs("op@example.test", "socios", 50).
		WillReturnRows(listColumns().AddRow(
			int64(42), "u1", "op@example.test", "Operadora",
			"DELETE", "socios", "100",
			[]byte(`{"Legajo":"100"}`), nil,
			occurredAt, "10.0.0.7", "padronctl/1.0", "sess-1",
		))

	entries, err := store.List(context.Background(), Filter{
		Actor: "op@example.test",
		Table: "socios",
		Limit: 50,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, int64(42), entry.ID)
	assert.Equal(t, ActionDelete, entry.Action)
	assert.Equal(t, "100", entry.Before["Legajo"])
	assert.Nil(t, entry.After)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDefaultLimit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM audit_log ORDER BY occurred_at DESC, id DESC LIMIT \$1`).
		WithArgs(defaultListLimit).
		WillReturnRows(listColumns())

	entries, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTimeBounds(t *testing.T) {
	store, mock := newMockStore(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE action = \$1 AND occurred_at >= \$2 AND occurred_at <= \$3`).
		WithArgs("CREATE", from, to, defaultListLimit).
		WillReturnRows(listColumns())

	_, err := store.List(context.Background(), Filter{Action: ActionCreate, From: &from, To: &to})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
