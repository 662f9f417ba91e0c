package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/dbx/dbxtest"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/textkeeper/internal/store"
	"github.com/dmitrijs2005/textkeeper/internal/store/storetest"
)

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) store.Store {
		db := dbxtest.OpenSQLite(t)
		return store.NewSQLStore(db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil), opts...)
	})
}

func TestPostgresContract(t *testing.T) {
	dsn := os.Getenv("TEXTKEEPER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEXTKEEPER_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T, opts ...store.Option) store.Store {
		ctx := context.Background()
		s, err := store.OpenSQL(ctx, dbx.Postgres, dsn, opts...)
		require.NoError(t, err)

		// ids repeat across subtests, so every subtest starts from empty tables.
		db, err := dbx.Open(ctx, dbx.Postgres, dsn)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `TRUNCATE draft, manual_version, document, folder`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestDeleteDocument_LeavesNoOrphans(t *testing.T) {
	db := dbxtest.OpenSQLite(t)
	s := store.NewSQLStore(db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil))
	ctx := context.Background()

	res, err := s.CreateDocument(ctx, "T", "one", nil)
	require.NoError(t, err)
	_, err = s.SaveManualVersion(ctx, res.DocumentID, "T", "two")
	require.NoError(t, err)
	require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "draft", nil))

	keep, err := s.CreateDocument(ctx, "Keep", "k", nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteDocument(ctx, res.DocumentID))

	assert.Equal(t, 0, dbxtest.Count(t, db, "manual_version WHERE document_id = ?", res.DocumentID))
	assert.Equal(t, 0, dbxtest.Count(t, db, "draft WHERE document_id = ?", res.DocumentID))
	assert.Equal(t, 1, dbxtest.Count(t, db, "manual_version WHERE document_id = ?", keep.DocumentID))
}

func TestSaveManualVersion_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.NewSQLStore(db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil),
		store.WithIDGenerator(func() string { return "v1" }))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO manual_version`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE document SET title`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = s.SaveManualVersion(context.Background(), "d1", "T", "body")
	require.ErrorIs(t, err, common.ErrTransaction)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDraft_MissingDocumentRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.NewSQLStore(db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO draft`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE document SET updated_at`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = s.UpsertDraft(context.Background(), "d1", "body", nil)
	require.ErrorIs(t, err, common.ErrReferentialViolation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocument_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.NewSQLStore(db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil))
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	_, err = s.CreateDocument(context.Background(), "T", "", nil)
	require.ErrorIs(t, err, common.ErrTransaction)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQL_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "textkeeper.db")

	s, err := store.OpenSQL(ctx, dbx.SQLite, path, store.WithClock(func() time.Time { return time.Unix(0, 0) }))
	require.NoError(t, err)
	res, err := s.CreateDocument(ctx, "Persisted", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.OpenSQL(ctx, dbx.SQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	latest, err := s.GetLatestManualVersion(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "hello", latest.Body)
}

func TestOpenSQL_UnavailableStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "db.sqlite")
	_, err := store.OpenSQL(context.Background(), dbx.SQLite, path)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
}
