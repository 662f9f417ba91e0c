// Package store is the versioning and draft-reconciliation core of
// textkeeper.
//
// A document owns an append-only list of manual versions and at most one
// draft. Saving commits a new manual version and clears the draft in one
// atomic step; autosave overwrites the draft in place. Every multi-statement
// mutation runs in a single transaction, so a failure leaves the previous
// state untouched.
//
// Two backends implement Store: SQLStore over database/sql (SQLite or
// PostgreSQL) and the go-memdb backend in store/memory. Both are exercised
// by the shared contract suite in store/storetest.
//
// Queries report absence as a nil result. Mutations addressed at a missing
// row return common.ErrNotFound, and references to a missing document or
// folder return common.ErrReferentialViolation.
package store

import (
	"context"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Store is the contract shared by every backend.
type Store interface {
	// CreateDocument creates a document together with its first manual
	// version (even for an empty body).
	CreateDocument(ctx context.Context, title, body string, folderID *string) (*models.CreateResult, error)

	// SaveManualVersion appends a manual version, updates title, modification
	// time and last saved pointer, and deletes the draft.
	SaveManualVersion(ctx context.Context, documentID, title, body string, opts ...SaveOption) (*models.SaveResult, error)

	// UpsertDraft writes the single draft slot and bumps the document's
	// modification time.
	UpsertDraft(ctx context.Context, documentID, body string, baseVersionID *string) error

	// DiscardDraft deletes the draft. Discarding when none exists is a no-op.
	DiscardDraft(ctx context.Context, documentID string) error

	// DeleteManualVersion removes one version. When it was the last saved
	// version the pointer moves to the newest remaining one, or to nil.
	DeleteManualVersion(ctx context.Context, documentID, versionID string) error

	// DeleteDocument removes the document with its versions and draft.
	DeleteDocument(ctx context.Context, documentID string) error

	ListDocuments(ctx context.Context) ([]models.Document, error)

	// SearchDocuments matches term case-insensitively against titles and
	// manual version bodies. A blank term lists everything.
	SearchDocuments(ctx context.Context, term string) ([]models.Document, error)

	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListVersions(ctx context.Context, documentID string) ([]models.Version, error)
	GetVersion(ctx context.Context, documentID, versionID string) (*models.Version, error)
	GetLatestManualVersion(ctx context.Context, documentID string) (*models.Version, error)
	GetDraft(ctx context.Context, documentID string) (*models.Draft, error)

	RenameDocument(ctx context.Context, documentID, title string) error
	MoveDocument(ctx context.Context, documentID string, folderID *string) error

	CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error)
	ListFolders(ctx context.Context) ([]models.Folder, error)
	RenameFolder(ctx context.Context, id, name string) error

	// DeleteFolder removes a folder, promoting its documents and child
	// folders to its parent.
	DeleteFolder(ctx context.Context, id string) error

	Close() error
}

// SaveOption customises a manual save.
type SaveOption func(*SaveOptions)

// SaveOptions is the resolved set of SaveOption values.
type SaveOptions struct {
	Note *string
}

// WithNote attaches a free-form note to the saved version.
func WithNote(note string) SaveOption {
	return func(o *SaveOptions) {
		o.Note = models.StringPtr(note)
	}
}

// ApplySaveOptions resolves opts.
func ApplySaveOptions(opts ...SaveOption) SaveOptions {
	var o SaveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
