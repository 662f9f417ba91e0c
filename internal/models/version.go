package models

import "time"

// VersionKind tags a manual version row.
type VersionKind string

const (
	// VersionKindManual is the only kind written by the store.
	VersionKindManual VersionKind = "manual"
	// VersionKindAutosave is accepted by the schema but never written.
	VersionKindAutosave VersionKind = "autosave"
)

// Version is an immutable snapshot of a document body.
type Version struct {
	ID         string      `json:"id" yaml:"id"`
	DocumentID string      `json:"document_id" yaml:"document_id"`
	Body       string      `json:"body" yaml:"body"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
	Kind       VersionKind `json:"kind" yaml:"kind"`
	Note       *string     `json:"note,omitempty" yaml:"note,omitempty"`
}

// Draft is the single autosave slot of a document.
type Draft struct {
	DocumentID string    `json:"document_id" yaml:"document_id"`
	Body       string    `json:"body" yaml:"body"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`

	// BaseVersionID records the manual version the draft was forked from.
	// The store does not interpret it.
	BaseVersionID *string `json:"base_version_id,omitempty" yaml:"base_version_id,omitempty"`
}
