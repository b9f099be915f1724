package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Store persists audit entries to the append-only audit_log table and
// serves the read-only listing for privileged principals. Nothing in this
// package ever updates or deletes a persisted entry; the table's own
// trigger enforces the same from the store side.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects a store to the given database URL.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying connection (for testing).
func (s *Store) DB() *sql.DB {
	return s.db
}

const insertEntryQuery = `
	INSERT INTO audit_log (
		actor_id, actor_email, actor_display_name,
		action, table_name, record_id,
		before_snapshot, after_snapshot,
		occurred_at, source_ip, user_agent, session_context
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id
`

// Save persists one entry and fills in its store-assigned ID.
func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("serializing before snapshot: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("serializing after snapshot: %w", err)
	}

	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	row := s.db.QueryRowContext(ctx, insertEntryQuery,
		entry.ActorID,
		entry.ActorEmail,
		entry.ActorDisplayName,
		string(entry.Action),
		entry.TableName,
		entry.RecordID,
		before,
		after,
		occurredAt,
		entry.SourceIP,
		entry.UserAgent,
		entry.SessionContext,
	)
	return row.Scan(&entry.ID)
}

// Filter selects audit entries for listing. Zero-value fields are not
// applied.
type Filter struct {
	Actor  string
	Table  string
	Action Action
	From   *time.Time
	To     *time.Time
	Limit  int
}

const defaultListLimit = 200

// List returns entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, actor_id, actor_email, actor_display_name,
		       action, table_name, record_id,
		       before_snapshot, after_snapshot,
		       occurred_at, source_ip, user_agent, session_context
		FROM audit_log
	`)

	var (
		clauses []string
		args    []interface{}
	)
	addClause := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Actor != "" {
		addClause("actor_email = $%d", filter.Actor)
	}
	if filter.Table != "" {
		addClause("table_name = $%d", filter.Table)
	}
	if filter.Action != "" {
		addClause("action = $%d", string(filter.Action))
	}
	if filter.From != nil {
		addClause("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addClause("occurred_at <= $%d", *filter.To)
	}

	if len(clauses) > 0 {
		query.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	query.WriteString(fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d", len(args)))

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry         Entry
			action        string
			before, after []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorEmail,
			&entry.ActorDisplayName,
			&action,
			&entry.TableName,
			&entry.RecordID,
			&before,
			&after,
			&entry.OccurredAt,
			&entry.SourceIP,
			&entry.UserAgent,
			&entry.SessionContext,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.Action = Action(action)
		if entry.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, fmt.Errorf("decoding before snapshot of entry %d: %w", entry.ID, err)
		}
		if entry.After, err = unmarshalSnapshot(after); err != nil {
			return nil, fmt.Errorf("decoding after snapshot of entry %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalSnapshot(snapshot map[string]interface{}) (interface{}, error) {
	if snapshot == nil {
		return nil, nil
	}
	return json.Marshal(snapshot)
}

func unmarshalSnapshot(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}
