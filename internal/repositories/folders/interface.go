package folders

import (
	"context"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Repository describes the operations on folder rows. Methods addressing a
// single row return common.ErrNotFound when it does not exist.
type Repository interface {
	Insert(ctx context.Context, f *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// List returns every folder ordered by name.
	List(ctx context.Context) ([]models.Folder, error)

	Rename(ctx context.Context, id, name string, at time.Time) error

	// Reparent moves every child folder of from under to (nil for the root).
	Reparent(ctx context.Context, from string, to *string, at time.Time) (int64, error)

	DeleteByID(ctx context.Context, id string) error
}
