package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fedecoop/padron/pkg/audit"
	"github.com/fedecoop/padron/pkg/catalog"
	"github.com/fedecoop/padron/pkg/domain"
	"github.com/fedecoop/padron/pkg/principal"
)

// SchemaSource resolves table metadata; *catalog.Registry is the production
// implementation.
type SchemaSource interface {
	Get(ctx context.Context, table string) (*catalog.TableSchema, error)
}

// AuditRecorder receives one entry per mutation. Implementations never
// return an error; a failed audit write must not fail the mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Executor performs generic CRUD operations against any table the catalog
// knows. It holds no per-request state; every operation is one
// request/response cycle.
type Executor struct {
	db       *gorm.DB
	schemas  SchemaSource
	enricher *Enricher
	recorder AuditRecorder
	log      *zap.Logger
}

// NewExecutor wires an Executor. enricher and recorder may be nil, which
// disables enrichment and audit respectively (tests use this; production
// wiring always passes both).
func NewExecutor(db *gorm.DB, schemas SchemaSource, enricher *Enricher, recorder AuditRecorder, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{db: db, schemas: schemas, enricher: enricher, recorder: recorder, log: log}
}

// ReadResult is the outcome of a Read or Search: the full annotated row set,
// its size, and the resolved primary-key column.
type ReadResult struct {
	Rows       []Record
	Total      int
	PrimaryKey string
}

// Create inserts one record. Null and empty fields are stripped first; an
// empty remainder is a ValidationError. The full inserted row, including
// store-side defaults, is returned annotated with its primary-key value.
func (e *Executor) Create(ctx context.Context, table string, payload Record) (Record, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}

	fields := stripEmpty(stripBookkeeping(payload))
	if len(fields) == 0 {
		return nil, domain.ErrValidation("create payload for table %q is empty", table)
	}

	columns, args, err := orderedFields(schema, fields)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, name := range columns {
		quoted[i] = pq.QuoteIdentifier(name)
		placeholders[i] = "?"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(schema.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	records, err := e.queryRecords(ctx, e.db, insertSQL, args...)
	if err != nil {
		return nil, translateStoreError(table, err)
	}
	if len(records) == 0 {
		return nil, domain.ErrSchema("insert into table %q returned no row", table)
	}

	row := records[0]
	annotate(row, schema, 1)

	e.record(ctx, audit.Entry{
		Action:    audit.ActionCreate,
		TableName: schema.Name,
		RecordID:  recordID(schema, row),
		After:     snapshot(row),
	})
	return row, nil
}

// Read returns every row of the table ordered by primary key ascending,
// annotated with _primaryKey and _rowIndex, with the entity-table
// enrichment applied when plannable.
//
// There is deliberately no pagination: the external contract assumes table
// sizes stay within a single-response budget, and changing that contract is
// a compatibility decision, not a bug fix.
func (e *Executor) Read(ctx context.Context, table string) (*ReadResult, error) {
	return e.read(ctx, table, nil)
}

// Search is Read restricted by one type-aware condition on the named field.
// A field absent from the schema is a ValidationError, never a store error.
func (e *Executor) Search(ctx context.Context, table, field, text string) (*ReadResult, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}
	col, ok := schema.Column(field)
	if !ok {
		return nil, domain.ErrValidation("search field %q is not a column of table %q", field, table)
	}
	cond := catalog.BuildQualifiedCondition(schema.Name, col, text)
	return e.readSchema(ctx, schema, []catalog.Condition{cond})
}

// SearchRange is Read restricted to a date span on the named field. Either
// bound may be empty.
func (e *Executor) SearchRange(ctx context.Context, table, field, from, to string) (*ReadResult, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}
	col, ok := schema.Column(field)
	if !ok {
		return nil, domain.ErrValidation("search field %q is not a column of table %q", field, table)
	}
	return e.readSchema(ctx, schema, catalog.BuildQualifiedDateRange(schema.Name, col, from, to))
}

func (e *Executor) read(ctx context.Context, table string, conditions []catalog.Condition) (*ReadResult, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}
	return e.readSchema(ctx, schema, conditions)
}

func (e *Executor) readSchema(ctx context.Context, schema *catalog.TableSchema, conditions []catalog.Condition) (*ReadResult, error) {
	var plan *JoinPlan
	if e.enricher != nil {
		plan = e.enricher.Plan(schema)
	}

	query, args := buildSelect(schema, plan, conditions)
	records, err := e.queryRecords(ctx, e.db, query, args...)
	if err != nil {
		return nil, translateStoreError(schema.Name, err)
	}

	for i, row := range records {
		annotate(row, schema, i+1)
	}
	return &ReadResult{Rows: records, Total: len(records), PrimaryKey: schema.PrimaryKey}, nil
}

// Update mutates the single row identified by the (matchField, matchValue)
// criterion. Any catalog column may serve as the match key. The pre-image
// read and the mutation run in one transaction with the row locked, so a
// concurrent writer cannot slip between them; a criterion matching more
// than one row fails before mutating anything.
func (e *Executor) Update(ctx context.Context, table, matchField, matchValue string, fields Record) (Record, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}
	matchCol, ok := schema.Column(matchField)
	if !ok {
		return nil, domain.ErrValidation("match field %q is not a column of table %q", matchField, table)
	}

	updates := stripBookkeeping(fields)
	if len(updates) == 0 {
		return nil, domain.ErrValidation("update payload for table %q is empty", table)
	}
	columns, args, err := orderedFields(schema, updates)
	if err != nil {
		return nil, err
	}

	cond := catalog.BuildCondition(matchCol, matchValue)

	var before, after Record
	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		before, err = e.lockRow(ctx, tx, schema, matchField, matchValue, cond)
		if err != nil {
			return err
		}

		assignments := make([]string, len(columns))
		for i, name := range columns {
			assignments[i] = pq.QuoteIdentifier(name) + " = ?"
		}
		updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING *",
			pq.QuoteIdentifier(schema.Name),
			strings.Join(assignments, ", "),
			cond.SQL,
		)
		updateArgs := append(append([]interface{}{}, args...), cond.Args...)

		records, err := e.queryRecords(ctx, tx, updateSQL, updateArgs...)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return domain.ErrNotFound("no row in table %q matches %s=%q", table, matchField, matchValue)
		}
		after = records[0]
		return nil
	})
	if txErr != nil {
		return nil, translateStoreError(table, txErr)
	}

	annotate(after, schema, 1)

	e.record(ctx, audit.Entry{
		Action:    audit.ActionUpdate,
		TableName: schema.Name,
		RecordID:  recordID(schema, before),
		Before:    snapshot(before),
		After:     snapshot(after),
	})
	return after, nil
}

// Delete removes the single row identified by the (matchField, matchValue)
// criterion, with the same locking and single-row contract as Update.
func (e *Executor) Delete(ctx context.Context, table, matchField, matchValue string) (Record, error) {
	schema, err := e.schemas.Get(ctx, table)
	if err != nil {
		return nil, err
	}
	matchCol, ok := schema.Column(matchField)
	if !ok {
		return nil, domain.ErrValidation("match field %q is not a column of table %q", matchField, table)
	}

	cond := catalog.BuildCondition(matchCol, matchValue)

	var before Record
	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		before, err = e.lockRow(ctx, tx, schema, matchField, matchValue, cond)
		if err != nil {
			return err
		}

		deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s",
			pq.QuoteIdentifier(schema.Name), cond.SQL)
		return tx.Exec(deleteSQL, cond.Args...).Error
	})
	if txErr != nil {
		return nil, translateStoreError(table, txErr)
	}

	e.record(ctx, audit.Entry{
		Action:    audit.ActionDelete,
		TableName: schema.Name,
		RecordID:  recordID(schema, before),
		Before:    snapshot(before),
	})
	return before, nil
}

// lockRow reads the pre-image of the row matching cond under FOR UPDATE,
// failing when the criterion matches no row or more than one.
func (e *Executor) lockRow(ctx context.Context, tx *gorm.DB, schema *catalog.TableSchema, matchField, matchValue string, cond catalog.Condition) (Record, error) {
	selectSQL := fmt.Sprintf("SELECT * FROM %s WHERE %s FOR UPDATE",
		pq.QuoteIdentifier(schema.Name), cond.SQL)

	records, err := e.queryRecords(ctx, tx, selectSQL, cond.Args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound("no row in table %q matches %s=%q", schema.Name, matchField, matchValue)
	}
	if len(records) > 1 {
		return nil, domain.ErrValidation("criterion %s=%q matches %d rows in table %q; refusing to mutate", matchField, matchValue, len(records), schema.Name)
	}
	return records[0], nil
}

func (e *Executor) queryRecords(ctx context.Context, db *gorm.DB, query string, args ...interface{}) ([]Record, error) {
	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (e *Executor) record(ctx context.Context, entry audit.Entry) {
	if p, ok := principal.FromContext(ctx); ok {
		entry.ActorID = p.ID
		entry.ActorEmail = p.Email
		entry.ActorDisplayName = p.DisplayName
		entry.SourceIP = p.RemoteIP
		entry.UserAgent = p.UserAgent
		entry.SessionContext = p.SessionID
	}
	if e.recorder != nil {
		e.recorder.Record(ctx, entry)
	}
}

// buildSelect assembles the read query: the base table's full projection,
// the enrichment plan's join and display columns when present, the
// conditions, and a stable primary-key ordering.
func buildSelect(schema *catalog.TableSchema, plan *JoinPlan, conditions []catalog.Condition) (string, []interface{}) {
	base := pq.QuoteIdentifier(schema.Name)

	selectColumns := []string{base + ".*"}
	var joinClause string
	if plan != nil {
		selectColumns = append(selectColumns, plan.SelectColumns...)
		joinClause = " " + plan.Join
	}

	query := strings.Builder{}
	query.WriteString("SELECT " + strings.Join(selectColumns, ", "))
	query.WriteString(" FROM " + base)
	query.WriteString(joinClause)

	var args []interface{}
	if len(conditions) > 0 {
		clauses := make([]string, len(conditions))
		for i, cond := range conditions {
			clauses[i] = cond.SQL
			args = append(args, cond.Args...)
		}
		query.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	if schema.PrimaryKey != "" {
		query.WriteString(fmt.Sprintf(" ORDER BY %s.%s ASC", base, pq.QuoteIdentifier(schema.PrimaryKey)))
	}
	return query.String(), args
}

// orderedFields resolves payload keys against the schema case-insensitively
// and returns the canonical column names and values in declaration order.
// A key that is not a column of the table is a ValidationError.
func orderedFields(schema *catalog.TableSchema, fields Record) ([]string, []interface{}, error) {
	remaining := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		remaining[strings.ToLower(k)] = v
	}

	var (
		columns []string
		args    []interface{}
	)
	for _, col := range schema.Columns {
		key := strings.ToLower(col.Name)
		if value, ok := remaining[key]; ok {
			columns = append(columns, col.Name)
			args = append(args, value)
			delete(remaining, key)
		}
	}

	if len(remaining) > 0 {
		unknown := make([]string, 0, len(remaining))
		for k := range remaining {
			unknown = append(unknown, k)
		}
		return nil, nil, domain.ErrValidation("unknown columns %v in table %q", unknown, schema.Name)
	}
	return columns, args, nil
}

// annotate attaches the bookkeeping fields to a result row.
func annotate(row Record, schema *catalog.TableSchema, index int) {
	if schema.PrimaryKey != "" {
		row[PrimaryKeyField] = row[schema.PrimaryKey]
	}
	row[RowIndexField] = index
}

// snapshot copies a row for audit, dropping the bookkeeping annotations.
func snapshot(row Record) map[string]interface{} {
	if row == nil {
		return nil
	}
	return stripBookkeeping(row)
}

// recordID formats the row's resolved primary-key value for the audit
// trail.
func recordID(schema *catalog.TableSchema, row Record) string {
	if row == nil || schema.PrimaryKey == "" {
		return ""
	}
	value, ok := row[schema.PrimaryKey]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
