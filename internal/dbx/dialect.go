package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect describes a supported SQL engine.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string
	// Goose is the dialect name understood by goose.
	Goose string
	// BindType is the sqlx placeholder style.
	BindType int
	// Lower is the Unicode-aware lowercase function used for case-insensitive
	// matching.
	Lower string
}

var (
	SQLite   = Dialect{Driver: "sqlite", Goose: "sqlite3", BindType: sqlx.QUESTION, Lower: UnicodeLower}
	Postgres = Dialect{Driver: "pgx", Goose: "postgres", BindType: sqlx.DOLLAR, Lower: "lower"}
)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// Bind returns q itself when the dialect already uses "?" placeholders and a
// rebinding wrapper otherwise. Repositories always write "?" queries.
func Bind(d Dialect, q DBTX) DBTX {
	if d.BindType == sqlx.QUESTION || d.BindType == sqlx.UNKNOWN {
		return q
	}
	return &rebinder{q: q, bindType: d.BindType}
}

type rebinder struct {
	q        DBTX
	bindType int
}

func (r *rebinder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

func (r *rebinder) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.q.QueryContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

func (r *rebinder) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(ctx, sqlx.Rebind(r.bindType, query), args...)
}

// SQLiteDSN turns a file path into a modernc.org/sqlite DSN with foreign keys
// enforced on every connection. ":memory:" yields a private in-memory database.
func SQLiteDSN(path string) string {
	if path == ":memory:" || path == "" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "foreign_keys") {
			return path
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open opens and pings a database for the dialect. SQLite is limited to a
// single connection: the store has one writer and in-memory databases are
// per connection.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	if d.Driver == SQLite.Driver {
		dsn = SQLiteDSN(dsn)
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Driver, err)
	}
	if d.Driver == SQLite.Driver {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Driver, err)
	}
	return db, nil
}
