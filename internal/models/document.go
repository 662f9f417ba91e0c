// Package models defines the entities persisted by the textkeeper store:
// documents, their immutable manual versions, the single mutable draft slot
// and the folders documents are grouped in.
package models

import (
	"strings"
	"time"
)

// DefaultTitle replaces a blank document title.
const DefaultTitle = "Untitled Text"

// NormalizeTitle trims title and substitutes DefaultTitle when nothing is left.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return DefaultTitle
	}
	return t
}

// Document is a named container for content.
type Document struct {
	// ID is a globally unique identifier (UUID string).
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// LastSavedVersionID points at the newest manual version, nil when the
	// document has none left.
	LastSavedVersionID *string `json:"last_saved_version_id,omitempty" yaml:"last_saved_version_id,omitempty"`

	// FolderID is nil for documents at the root.
	FolderID *string `json:"folder_id,omitempty" yaml:"folder_id,omitempty"`
}

// CreateResult is returned by CreateDocument.
type CreateResult struct {
	DocumentID string    `json:"document_id"`
	VersionID  string    `json:"version_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveResult is returned by SaveManualVersion.
type SaveResult struct {
	VersionID string    `json:"version_id"`
	SavedAt   time.Time `json:"saved_at"`
}
