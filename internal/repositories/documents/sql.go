package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/timex"
)

const columns = `id, title, created_at, updated_at, last_saved_version_id, folder_id`

// SQLRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db    dbx.DBTX
	lower string
}

// NewSQLRepository returns a new SQLRepository bound to the given DBTX,
// using the SQLite dialect for case folding.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return NewDialectRepository(dbx.SQLite, db)
}

// NewDialectRepository returns a SQLRepository whose queries are rebound
// and case-folded for d.
func NewDialectRepository(d dbx.Dialect, db dbx.DBTX) *SQLRepository {
	lower := d.Lower
	if lower == "" {
		lower = "lower"
	}
	return &SQLRepository{db: dbx.Bind(d, db), lower: lower}
}

func (r *SQLRepository) Insert(ctx context.Context, d *models.Document) error {
	query := `INSERT INTO document (id, title, created_at, updated_at, last_saved_version_id, folder_id)
			VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Title, timex.Millis(d.CreatedAt), timex.Millis(d.UpdatedAt),
		nullString(d.LastSavedVersionID), nullString(d.FolderID))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + columns + ` FROM document WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return d, nil
}

// List lists all documents, most recently updated first.
func (r *SQLRepository) List(ctx context.Context) ([]models.Document, error) {
	query := `SELECT ` + columns + ` FROM document ORDER BY updated_at DESC, id`
	return r.query(ctx, query)
}

// Search matches the trimmed term against the title or any manual version
// body, folding case with full Unicode rules on both sides. The match is an
// existence check: a document appears once however many versions match.
func (r *SQLRepository) Search(ctx context.Context, term string) ([]models.Document, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.List(ctx)
	}
	pattern := LikePattern(term)
	query := `SELECT ` + columns + ` FROM document d
		WHERE ` + r.lower + `(d.title) LIKE ? ESCAPE '\'
		   OR EXISTS (
		      SELECT 1 FROM manual_version v
		      WHERE v.document_id = d.id AND ` + r.lower + `(v.body) LIKE ? ESCAPE '\'
		   )
		ORDER BY d.updated_at DESC, d.id`
	return r.query(ctx, query, pattern, pattern)
}

func (r *SQLRepository) MarkSaved(ctx context.Context, id, title, versionID string, at time.Time) error {
	query := `UPDATE document SET title = ?, updated_at = ?, last_saved_version_id = ? WHERE id = ?`
	return r.execOne(ctx, "mark document saved", id, query, title, timex.Millis(at), versionID, id)
}

func (r *SQLRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE document SET updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "touch document", id, query, timex.Millis(at), id)
}

func (r *SQLRepository) SetLastSavedVersion(ctx context.Context, id string, versionID *string) error {
	query := `UPDATE document SET last_saved_version_id = ? WHERE id = ?`
	return r.execOne(ctx, "repoint document", id, query, nullString(versionID), id)
}

func (r *SQLRepository) Rename(ctx context.Context, id, title string, at time.Time) error {
	query := `UPDATE document SET title = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "rename document", id, query, title, timex.Millis(at), id)
}

func (r *SQLRepository) Move(ctx context.Context, id string, folderID *string, at time.Time) error {
	query := `UPDATE document SET folder_id = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "move document", id, query, nullString(folderID), timex.Millis(at), id)
}

func (r *SQLRepository) MoveFolderContents(ctx context.Context, from string, to *string, at time.Time) (int64, error) {
	query := `UPDATE document SET folder_id = ?, updated_at = ? WHERE folder_id = ?`
	res, err := r.db.ExecContext(ctx, query, nullString(to), timex.Millis(at), from)
	if err != nil {
		return 0, fmt.Errorf("failed to move folder contents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// DeleteByID removes the document row. It expects exactly one row to be affected.
func (r *SQLRepository) DeleteByID(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete document", id, `DELETE FROM document WHERE id = ?`, id)
}

func (r *SQLRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var (
		d                 models.Document
		created, updated  int64
		lastSaved, folder sql.NullString
	)
	if err := s.Scan(&d.ID, &d.Title, &created, &updated, &lastSaved, &folder); err != nil {
		return nil, err
	}
	d.CreatedAt = timex.FromMillis(created)
	d.UpdatedAt = timex.FromMillis(updated)
	d.LastSavedVersionID = ptr(lastSaved)
	d.FolderID = ptr(folder)
	return &d, nil
}

// LikePattern lowercases term, escapes LIKE wildcards with '\' and wraps it
// for a substring match.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
