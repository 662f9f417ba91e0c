package memory

import (
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/dmitrijs2005/textkeeper/internal/models"
)

var (
	tblDocuments = "documents"
	tblVersions  = "versions"
	tblDrafts    = "drafts"
	tblFolders   = "folders"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"folder_id": {
					Name:         "folder_id",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "FolderID"},
				},
			},
		},
		tblVersions: {
			Name: tblVersions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"document_id": {
					Name:    "document_id",
					Indexer: &memdb.StringFieldIndex{Field: "DocumentID"},
				},
			},
		},
		tblDrafts: {
			Name: tblDrafts,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "DocumentID"},
				},
			},
		},
		tblFolders: {
			Name: tblFolders,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"parent_id": {
					Name:         "parent_id",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "ParentID"},
				},
			},
		},
	},
}

// Records are never mutated after insertion; updates insert a modified copy.
// Optional references are stored as "" so they can be indexed.

type documentRecord struct {
	ID                 string
	Title              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastSavedVersionID string
	FolderID           string
}

func (r *documentRecord) toModel() models.Document {
	return models.Document{
		ID:                 r.ID,
		Title:              r.Title,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		LastSavedVersionID: models.StringPtr(r.LastSavedVersionID),
		FolderID:           models.StringPtr(r.FolderID),
	}
}

type versionRecord struct {
	ID         string
	DocumentID string
	Body       string
	CreatedAt  time.Time
	Note       string
}

func (r *versionRecord) toModel() models.Version {
	return models.Version{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
		Kind:       models.VersionKindManual,
		Note:       models.StringPtr(r.Note),
	}
}

type draftRecord struct {
	DocumentID    string
	Body          string
	UpdatedAt     time.Time
	BaseVersionID string
}

func (r *draftRecord) toModel() models.Draft {
	return models.Draft{
		DocumentID:    r.DocumentID,
		Body:          r.Body,
		UpdatedAt:     r.UpdatedAt,
		BaseVersionID: models.StringPtr(r.BaseVersionID),
	}
}

type folderRecord struct {
	ID        string
	Name      string
	ParentID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *folderRecord) toModel() models.Folder {
	return models.Folder{
		ID:        r.ID,
		Name:      r.Name,
		ParentID:  models.StringPtr(r.ParentID),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
