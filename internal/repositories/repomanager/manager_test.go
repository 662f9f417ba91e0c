package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/logging"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	m := NewSQLRepositoryManager(dbx.SQLite, nil)

	assert.NotNil(t, m.Documents(db))
	assert.NotNil(t, m.Versions(db))
	assert.NotNil(t, m.Drafts(db))
	assert.NotNil(t, m.Folders(db))

	var _ RepositoryManager = m
}

func TestPostgresRepos_UseNumberedPlaceholders(t *testing.T) {
	db, mock := newDB(t)
	m := NewSQLRepositoryManager(dbx.Postgres, nil)

	mock.ExpectExec(`DELETE FROM draft WHERE document_id = \$1`).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, m.Drafts(db).Delete(context.Background(), "d1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSearch_UsesNativeLower(t *testing.T) {
	db, mock := newDB(t)
	m := NewSQLRepositoryManager(dbx.Postgres, nil)

	mock.ExpectQuery(`WHERE lower\(d.title\) LIKE \$1 .*lower\(v.body\) LIKE \$2`).
		WithArgs("%ärger%", "%ärger%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at", "updated_at", "last_saved_version_id", "folder_id"}))

	docs, err := m.Documents(db).Search(context.Background(), " ÄRGER ")
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_PassesGooseDialect(t *testing.T) {
	db, _ := newDB(t)

	orig := migrate
	t.Cleanup(func() { migrate = orig })

	var got string
	migrate = func(_ context.Context, _ *sql.DB, dialect string, _ logging.Logger) error {
		got = dialect
		return errors.New("stop")
	}

	err := NewSQLRepositoryManager(dbx.Postgres, nil).RunMigrations(context.Background(), db)
	require.EqualError(t, err, "stop")
	assert.Equal(t, "postgres", got)
}
