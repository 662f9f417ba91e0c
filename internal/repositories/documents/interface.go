package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Repository describes the operations on document rows. Methods addressing a
// single row return common.ErrNotFound when it does not exist.
type Repository interface {
	// Insert adds a new document row.
	Insert(ctx context.Context, doc *models.Document) error

	// GetByID returns a document by its identifier.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// List returns all documents, most recently updated first.
	List(ctx context.Context) ([]models.Document, error)

	// Search returns documents whose title or any manual version body
	// contains term, case-insensitively, most recently updated first.
	Search(ctx context.Context, term string) ([]models.Document, error)

	// MarkSaved records a new manual version: title, modification time and
	// the last saved version pointer change together.
	MarkSaved(ctx context.Context, id, title, versionID string, at time.Time) error

	// Touch bumps the modification time.
	Touch(ctx context.Context, id string, at time.Time) error

	// SetLastSavedVersion rewrites the version pointer without touching the
	// modification time.
	SetLastSavedVersion(ctx context.Context, id string, versionID *string) error

	// Rename changes the title.
	Rename(ctx context.Context, id, title string, at time.Time) error

	// Move places the document in folderID (nil for the root).
	Move(ctx context.Context, id string, folderID *string, at time.Time) error

	// MoveFolderContents moves every document of folder from into to.
	MoveFolderContents(ctx context.Context, from string, to *string, at time.Time) (int64, error)

	// DeleteByID removes the document; versions and draft cascade.
	DeleteByID(ctx context.Context, id string) error
}
