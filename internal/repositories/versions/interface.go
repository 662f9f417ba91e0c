package versions

import (
	"context"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Repository describes the operations on manual_version rows.
type Repository interface {
	// Insert adds an immutable version row.
	Insert(ctx context.Context, v *models.Version) error

	// GetByID returns the version of documentID with the given id, or
	// common.ErrNotFound.
	GetByID(ctx context.Context, documentID, id string) (*models.Version, error)

	// ListByDocument returns every version of the document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]models.Version, error)

	// Latest returns the newest version, or common.ErrNotFound when the
	// document has none.
	Latest(ctx context.Context, documentID string) (*models.Version, error)

	// DeleteByID removes one version of documentID.
	DeleteByID(ctx context.Context, documentID, id string) error
}
