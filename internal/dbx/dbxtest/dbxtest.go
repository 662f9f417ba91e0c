// Package dbxtest opens migrated databases for repository and store tests.
package dbxtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/migrations"
)

// OpenSQLite returns a private, migrated in-memory SQLite database that is
// closed when the test ends.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.Open(ctx, dbx.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Run(ctx, db, dbx.SQLite.Goose, nil))
	return db
}

// Count returns SELECT COUNT(*) for the given query suffix, e.g.
// Count(t, db, "draft WHERE document_id = ?", id).
func Count(t *testing.T, db *sql.DB, from string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+from, args...).Scan(&n))
	return n
}
