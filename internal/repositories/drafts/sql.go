package drafts

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

// SQLRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository returns a new SQLRepository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, d *models.Draft) error {
	query := `INSERT INTO draft (document_id, body, updated_at, base_version_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(document_id) DO UPDATE SET
				body = excluded.body,
				updated_at = excluded.updated_at,
				base_version_id = excluded.base_version_id`

	var base sql.NullString
	if d.BaseVersionID != nil {
		base = sql.NullString{String: *d.BaseVersionID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, d.DocumentID, d.Body, timex.Millis(d.UpdatedAt), base)
	if err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, documentID string) (*models.Draft, error) {
	query := `SELECT document_id, body, updated_at, base_version_id FROM draft WHERE document_id = ?`

	var (
		d       models.Draft
		updated int64
		base    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(&d.DocumentID, &d.Body, &updated, &base)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", documentID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	d.UpdatedAt = timex.FromMillis(updated)
	if base.Valid {
		b := base.String
		d.BaseVersionID = &b
	}
	return &d, nil
}

func (r *SQLRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM draft WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
