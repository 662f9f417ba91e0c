package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/timex"
)

const columns = `id, name, parent_id, created_at, updated_at`

// SQLRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository returns a new SQLRepository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folder (id, name, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, nullString(f.ParentID), timex.Millis(f.CreatedAt), timex.Millis(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + columns + ` FROM folder WHERE id = ?`
	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return f, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM folder ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) Rename(ctx context.Context, id, name string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE folder SET name = ?, updated_at = ? WHERE id = ?`, name, timex.Millis(at), id)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	return expectOne(res, id)
}

func (r *SQLRepository) Reparent(ctx context.Context, from string, to *string, at time.Time) (int64, error) {
	query := `UPDATE folder SET parent_id = ?, updated_at = ? WHERE parent_id = ?`
	res, err := r.db.ExecContext(ctx, query, nullString(to), timex.Millis(at), from)
	if err != nil {
		return 0, fmt.Errorf("failed to reparent folders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folder WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(s scanner) (*models.Folder, error) {
	var (
		f                models.Folder
		parent           sql.NullString
		created, updated int64
	)
	if err := s.Scan(&f.ID, &f.Name, &parent, &created, &updated); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.String
		f.ParentID = &p
	}
	f.CreatedAt = timex.FromMillis(created)
	f.UpdatedAt = timex.FromMillis(updated)
	return &f, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
