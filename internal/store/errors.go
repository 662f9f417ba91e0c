package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrijs2005/textkeeper/internal/common"
)

// pgForeignKeyViolation is SQLSTATE foreign_key_violation.
const pgForeignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a foreign key failure from
// SQLite or PostgreSQL.
func IsForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "FOREIGN KEY")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}

// wrapTx classifies the failure of a multi-statement operation. Not found and
// validation errors pass through so callers can match them directly.
func wrapTx(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrReferentialViolation):
		return err
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: %w", common.ErrReferentialViolation, op, err)
	}
	return fmt.Errorf("%w: %s: %w", common.ErrTransaction, op, err)
}

// wrap classifies the failure of a single statement.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		return err
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: %w", common.ErrReferentialViolation, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// missingDocument turns a zero-row update of the owning document into a
// referential violation.
func missingDocument(id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: document %s does not exist", common.ErrReferentialViolation, id)
	}
	return err
}
