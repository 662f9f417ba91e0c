// Package dbx holds the database plumbing shared by the SQL repositories:
// the DBTX handle that lets a repository run on the pool or inside a
// transaction, the WithTx helper every multi-row store operation goes
// through, and the dialect glue that lets one set of "?" queries run on
// SQLite and PostgreSQL.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is what a repository needs from its handle. *sql.DB and *sql.Tx
// both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction. The transaction commits only when
// fn returns nil; an error or panic rolls back every statement fn issued.
// A panic is re-raised after the rollback.
//
// Saving a version is the typical caller: the version insert, the document
// pointer update and the draft removal land together or not at all.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := repo.Versions(tx).Insert(ctx, v); err != nil {
//	        return err
//	    }
//	    return repo.Documents(tx).MarkSaved(ctx, docID, title, v.ID, now)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
