package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/textkeeper/internal/logging"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Run applies all pending migrations to db using the goose dialect name
// ("sqlite3" or "postgres").
func Run(ctx context.Context, db *sql.DB, dialect string, log logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if log == nil {
		log = logging.Nop()
	}

	goose.SetBaseFS(Migrations)
	goose.SetLogger(&gooseLogger{log: log})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through the structured logger. goose's
// Fatalf is reported as an error; the failing call returns an error anyway.
type gooseLogger struct {
	log logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(context.Background(), fmt.Sprintf(format, v...), "component", "goose")
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), fmt.Sprintf(format, v...), "component", "goose")
}
