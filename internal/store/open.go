package store

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/repomanager"
)

// OpenSQL opens the database, applies pending migrations and returns a
// ready store. Any failure is reported as common.ErrStorageUnavailable.
func OpenSQL(ctx context.Context, dialect dbx.Dialect, dsn string, opts ...Option) (*SQLStore, error) {
	settings := NewSettings(opts...)

	db, err := dbx.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	repo := repomanager.NewSQLRepositoryManager(dialect, settings.Logger)
	if err := repo.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	settings.Logger.Debug(ctx, "storage ready", "driver", dialect.Driver)
	return &SQLStore{db: db, repo: repo, Settings: settings}, nil
}
