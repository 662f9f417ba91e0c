// Package repomanager vends the SQL repositories for one dialect and exposes
// the schema migration hook, so the store never builds repositories by hand.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/migrations"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/documents"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/drafts"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/folders"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/versions"
)

// RepositoryManager builds repositories bound to a DBTX (a *sql.DB or a
// transaction).
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Documents(db dbx.DBTX) documents.Repository
	Versions(db dbx.DBTX) versions.Repository
	Drafts(db dbx.DBTX) drafts.Repository
	Folders(db dbx.DBTX) folders.Repository
}

// SQLRepositoryManager vends the SQL repositories, rebinding placeholders
// for the configured dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	log     logging.Logger
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect, log logging.Logger) *SQLRepositoryManager {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLRepositoryManager{dialect: dialect, log: log}
}

// Dialect returns the dialect this manager binds queries for.
func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// migrate is a seam for testing migrations.Run.
var migrate = migrations.Run

// RunMigrations applies the embedded schema migrations to db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, m.dialect.Goose, m.log)
}

// Documents returns a documents.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewDialectRepository(m.dialect, db)
}

// Versions returns a versions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Versions(db dbx.DBTX) versions.Repository {
	return versions.NewSQLRepository(dbx.Bind(m.dialect, db))
}

// Drafts returns a drafts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Drafts(db dbx.DBTX) drafts.Repository {
	return drafts.NewSQLRepository(dbx.Bind(m.dialect, db))
}

// Folders returns a folders.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return folders.NewSQLRepository(dbx.Bind(m.dialect, db))
}
