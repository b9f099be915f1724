package engine

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/fedecoop/padron/pkg/domain"
)

// SQLSTATE codes the engine translates into domain categories.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateConnectionClass     = "08"
)

// translateStoreError maps backing-store failures onto the domain taxonomy.
// Constraint violations become ConflictError/ReferentialError, connection
// failures become TransientError, and anything already categorized passes
// through untouched. Raw SQLSTATE codes never reach the caller.
//
// Both driver error shapes are handled: the gorm connection surfaces
// *pgconn.PgError, the plain database/sql audit path surfaces *pq.Error.
func translateStoreError(table string, err error) error {
	if err == nil {
		return nil
	}

	var (
		notFound    *domain.NotFoundError
		validation  *domain.ValidationError
		conflict    *domain.ConflictError
		referential *domain.ReferentialError
		transient   *domain.TransientError
		schemaErr   *domain.SchemaError
	)
	if errors.As(err, &notFound) || errors.As(err, &validation) ||
		errors.As(err, &conflict) || errors.As(err, &referential) ||
		errors.As(err, &transient) || errors.As(err, &schemaErr) {
		return err
	}

	if errors.Is(err, driver.ErrBadConn) {
		return domain.ErrTransient("lost connection to backing store: %v", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound("no matching row in table %q", table)
	}

	if code, message, ok := sqlstate(err); ok {
		switch {
		case code == sqlstateUniqueViolation:
			return domain.ErrConflict("uniqueness violation on table %q: %s", table, message)
		case code == sqlstateForeignKeyViolation:
			return domain.ErrReferential("foreign key violation on table %q: %s", table, message)
		case len(code) >= 2 && code[:2] == sqlstateConnectionClass:
			return domain.ErrTransient("connection failure on table %q: %s", table, message)
		}
	}

	return fmt.Errorf("table %q: %w", table, err)
}

func sqlstate(err error) (code, message string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, true
	}
	return "", "", false
}
