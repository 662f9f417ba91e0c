package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/timex"
)

const columns = `id, document_id, body, created_at, kind, note`

// SQLRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository returns a new SQLRepository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, v *models.Version) error {
	kind := v.Kind
	if kind == "" {
		kind = models.VersionKindManual
	}
	query := `INSERT INTO manual_version (id, document_id, body, created_at, kind, note)
			VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.DocumentID, v.Body, timex.Millis(v.CreatedAt), string(kind), nullString(v.Note))
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, documentID, id string) (*models.Version, error) {
	query := `SELECT ` + columns + ` FROM manual_version WHERE document_id = ? AND id = ?`
	return r.one(ctx, id, query, documentID, id)
}

func (r *SQLRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Version, error) {
	query := `SELECT ` + columns + ` FROM manual_version
		WHERE document_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	result := []models.Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) Latest(ctx context.Context, documentID string) (*models.Version, error) {
	query := `SELECT ` + columns + ` FROM manual_version
		WHERE document_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.one(ctx, documentID, query, documentID)
}

func (r *SQLRepository) DeleteByID(ctx context.Context, documentID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM manual_version WHERE document_id = ? AND id = ?`, documentID, id)
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("version %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) one(ctx context.Context, key, query string, args ...any) (*models.Version, error) {
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return v, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(s scanner) (*models.Version, error) {
	var (
		v       models.Version
		created int64
		kind    string
		note    sql.NullString
	)
	if err := s.Scan(&v.ID, &v.DocumentID, &v.Body, &created, &kind, &note); err != nil {
		return nil, err
	}
	v.CreatedAt = timex.FromMillis(created)
	v.Kind = models.VersionKind(kind)
	if note.Valid {
		n := note.String
		v.Note = &n
	}
	return &v, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
