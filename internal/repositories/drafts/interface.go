package drafts

import (
	"context"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Repository describes the operations on draft rows.
type Repository interface {
	// Upsert inserts the draft or overwrites the existing one in place.
	Upsert(ctx context.Context, d *models.Draft) error

	// Get returns the draft of documentID, or common.ErrNotFound.
	Get(ctx context.Context, documentID string) (*models.Draft, error)

	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, documentID string) error
}
