// Package memory implements store.Store on top of go-memdb. Nothing is
// persisted; it backs ephemeral sessions and runs the same contract suite as
// the SQL store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-memdb"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

// Store is an in-memory store.Store.
type Store struct {
	db *memdb.MemDB
	store.Settings
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New(opts ...store.Option) (*Store, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: new memdb: %w", common.ErrStorageUnavailable, err)
	}
	return &Store{db: db, Settings: store.NewSettings(opts...)}, nil
}

// write runs fn in a write transaction, committing only when fn succeeds.
func (s *Store) write(op string, fn func(txn *memdb.Txn) error) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := fn(txn); err != nil {
		return wrapTx(op, err)
	}
	txn.Commit()
	return nil
}

func wrapTx(op string, err error) error {
	if errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrReferentialViolation) ||
		errors.Is(err, common.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", common.ErrTransaction, op, err)
}

func (s *Store) CreateDocument(ctx context.Context, title, body string, folderID *string) (*models.CreateResult, error) {
	if err := store.Validate(map[string]error{
		"title":     store.CheckTitle(title),
		"folder_id": store.CheckOptionalID(folderID),
	}); err != nil {
		return nil, err
	}

	now := s.Now()
	doc := &documentRecord{
		ID:        s.NewID(),
		Title:     models.NormalizeTitle(title),
		CreatedAt: now,
		UpdatedAt: now,
		FolderID:  models.Deref(folderID),
	}
	version := &versionRecord{ID: s.NewID(), DocumentID: doc.ID, Body: body, CreatedAt: now}
	doc.LastSavedVersionID = version.ID

	err := s.write("create document", func(txn *memdb.Txn) error {
		if doc.FolderID != "" {
			if _, err := getFolder(txn, doc.FolderID); err != nil {
				return missingReference("folder", doc.FolderID, err)
			}
		}
		if err := txn.Insert(tblDocuments, doc); err != nil {
			return err
		}
		if err := txn.Insert(tblVersions, version); err != nil {
			return err
		}
		_, err := txn.DeleteAll(tblDrafts, "id", doc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.CreateResult{DocumentID: doc.ID, VersionID: version.ID, CreatedAt: now}, nil
}

func (s *Store) SaveManualVersion(ctx context.Context, documentID, title, body string, opts ...store.SaveOption) (*models.SaveResult, error) {
	if err := store.Validate(map[string]error{
		"document_id": store.CheckID(documentID),
		"title":       store.CheckTitle(title),
	}); err != nil {
		return nil, err
	}

	o := store.ApplySaveOptions(opts...)
	now := s.Now()
	version := &versionRecord{
		ID:         s.NewID(),
		DocumentID: documentID,
		Body:       body,
		CreatedAt:  now,
		Note:       models.Deref(o.Note),
	}

	err := s.write("save manual version", func(txn *memdb.Txn) error {
		doc, err := getDocument(txn, documentID)
		if err != nil {
			return missingReference("document", documentID, err)
		}
		if err := txn.Insert(tblVersions, version); err != nil {
			return err
		}
		updated := *doc
		updated.Title = models.NormalizeTitle(title)
		updated.UpdatedAt = now
		updated.LastSavedVersionID = version.ID
		if err := txn.Insert(tblDocuments, &updated); err != nil {
			return err
		}
		_, err = txn.DeleteAll(tblDrafts, "id", documentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.SaveResult{VersionID: version.ID, SavedAt: now}, nil
}

func (s *Store) UpsertDraft(ctx context.Context, documentID, body string, baseVersionID *string) error {
	if err := store.Validate(map[string]error{
		"document_id":     store.CheckID(documentID),
		"base_version_id": store.CheckOptionalID(baseVersionID),
	}); err != nil {
		return err
	}

	now := s.Now()
	return s.write("upsert draft", func(txn *memdb.Txn) error {
		doc, err := getDocument(txn, documentID)
		if err != nil {
			return missingReference("document", documentID, err)
		}
		draft := &draftRecord{
			DocumentID:    documentID,
			Body:          body,
			UpdatedAt:     now,
			BaseVersionID: models.Deref(baseVersionID),
		}
		if err := txn.Insert(tblDrafts, draft); err != nil {
			return err
		}
		touched := *doc
		touched.UpdatedAt = now
		return txn.Insert(tblDocuments, &touched)
	})
}

func (s *Store) DiscardDraft(ctx context.Context, documentID string) error {
	return s.write("discard draft", func(txn *memdb.Txn) error {
		_, err := txn.DeleteAll(tblDrafts, "id", documentID)
		return err
	})
}

func (s *Store) DeleteManualVersion(ctx context.Context, documentID, versionID string) error {
	return s.write("delete manual version", func(txn *memdb.Txn) error {
		raw, err := txn.First(tblVersions, "id", versionID)
		if err != nil {
			return err
		}
		v, ok := raw.(*versionRecord)
		if !ok || v.DocumentID != documentID {
			return fmt.Errorf("version %s: %w", versionID, common.ErrNotFound)
		}
		if err := txn.Delete(tblVersions, v); err != nil {
			return err
		}

		doc, err := getDocument(txn, documentID)
		if err != nil {
			return err
		}
		if doc.LastSavedVersionID != versionID {
			return nil
		}

		repointed := *doc
		repointed.LastSavedVersionID = ""
		remaining, err := listVersions(txn, documentID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			repointed.LastSavedVersionID = remaining[0].ID
		}
		return txn.Insert(tblDocuments, &repointed)
	})
}

func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	return s.write("delete document", func(txn *memdb.Txn) error {
		doc, err := getDocument(txn, documentID)
		if err != nil {
			return err
		}
		if _, err := txn.DeleteAll(tblVersions, "document_id", documentID); err != nil {
			return err
		}
		if _, err := txn.DeleteAll(tblDrafts, "id", documentID); err != nil {
			return err
		}
		return txn.Delete(tblDocuments, doc)
	})
}

func (s *Store) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.SearchDocuments(ctx, "")
}

func (s *Store) SearchDocuments(ctx context.Context, term string) ([]models.Document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	result := []models.Document{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		doc := raw.(*documentRecord)
		if needle != "" {
			ok, err := matches(txn, doc, needle)
			if err != nil {
				return nil, fmt.Errorf("search documents: %w", err)
			}
			if !ok {
				continue
			}
		}
		result = append(result, doc.toModel())
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func matches(txn *memdb.Txn, doc *documentRecord, needle string) (bool, error) {
	if strings.Contains(strings.ToLower(doc.Title), needle) {
		return true, nil
	}
	it, err := txn.Get(tblVersions, "document_id", doc.ID)
	if err != nil {
		return false, err
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if strings.Contains(strings.ToLower(raw.(*versionRecord).Body), needle) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	d := raw.(*documentRecord).toModel()
	return &d, nil
}

func (s *Store) ListVersions(ctx context.Context, documentID string) ([]models.Version, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	records, err := listVersions(txn, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	result := make([]models.Version, 0, len(records))
	for _, r := range records {
		result = append(result, r.toModel())
	}
	return result, nil
}

func (s *Store) GetVersion(ctx context.Context, documentID, versionID string) (*models.Version, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblVersions, "id", versionID)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	r, ok := raw.(*versionRecord)
	if !ok || r.DocumentID != documentID {
		return nil, nil
	}
	v := r.toModel()
	return &v, nil
}

func (s *Store) GetLatestManualVersion(ctx context.Context, documentID string) (*models.Version, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	records, err := listVersions(txn, documentID)
	if err != nil {
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	v := records[0].toModel()
	return &v, nil
}

func (s *Store) GetDraft(ctx context.Context, documentID string) (*models.Draft, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDrafts, "id", documentID)
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	d := raw.(*draftRecord).toModel()
	return &d, nil
}

func (s *Store) RenameDocument(ctx context.Context, documentID, title string) error {
	if err := store.Validate(map[string]error{
		"document_id": store.CheckID(documentID),
		"title":       store.CheckTitle(title),
	}); err != nil {
		return err
	}
	now := s.Now()
	return s.write("rename document", func(txn *memdb.Txn) error {
		doc, err := getDocument(txn, documentID)
		if err != nil {
			return err
		}
		renamed := *doc
		renamed.Title = models.NormalizeTitle(title)
		renamed.UpdatedAt = now
		return txn.Insert(tblDocuments, &renamed)
	})
}

func (s *Store) MoveDocument(ctx context.Context, documentID string, folderID *string) error {
	if err := store.Validate(map[string]error{
		"document_id": store.CheckID(documentID),
		"folder_id":   store.CheckOptionalID(folderID),
	}); err != nil {
		return err
	}
	now := s.Now()
	return s.write("move document", func(txn *memdb.Txn) error {
		doc, err := getDocument(txn, documentID)
		if err != nil {
			return err
		}
		if folderID != nil {
			if _, err := getFolder(txn, *folderID); err != nil {
				return missingReference("folder", *folderID, err)
			}
		}
		moved := *doc
		moved.FolderID = models.Deref(folderID)
		moved.UpdatedAt = now
		return txn.Insert(tblDocuments, &moved)
	})
}

func (s *Store) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := store.Validate(map[string]error{
		"name":      store.CheckFolderName(name),
		"parent_id": store.CheckOptionalID(parentID),
	}); err != nil {
		return nil, err
	}

	now := s.Now()
	rec := &folderRecord{ID: s.NewID(), Name: name, ParentID: models.Deref(parentID), CreatedAt: now, UpdatedAt: now}
	err := s.write("create folder", func(txn *memdb.Txn) error {
		if rec.ParentID != "" {
			if _, err := getFolder(txn, rec.ParentID); err != nil {
				return missingReference("folder", rec.ParentID, err)
			}
		}
		return txn.Insert(tblFolders, rec)
	})
	if err != nil {
		return nil, err
	}
	f := rec.toModel()
	return &f, nil
}

func (s *Store) ListFolders(ctx context.Context) ([]models.Folder, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblFolders, "id")
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	result := []models.Folder{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		result = append(result, raw.(*folderRecord).toModel())
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) RenameFolder(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if err := store.Validate(map[string]error{
		"id":   store.CheckID(id),
		"name": store.CheckFolderName(name),
	}); err != nil {
		return err
	}
	now := s.Now()
	return s.write("rename folder", func(txn *memdb.Txn) error {
		f, err := getFolder(txn, id)
		if err != nil {
			return err
		}
		renamed := *f
		renamed.Name = name
		renamed.UpdatedAt = now
		return txn.Insert(tblFolders, &renamed)
	})
}

func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	now := s.Now()
	return s.write("delete folder", func(txn *memdb.Txn) error {
		f, err := getFolder(txn, id)
		if err != nil {
			return err
		}

		docs, err := collect[documentRecord](txn, tblDocuments, "folder_id", id)
		if err != nil {
			return err
		}
		for _, d := range docs {
			moved := *d
			moved.FolderID = f.ParentID
			moved.UpdatedAt = now
			if err := txn.Insert(tblDocuments, &moved); err != nil {
				return err
			}
		}

		children, err := collect[folderRecord](txn, tblFolders, "parent_id", id)
		if err != nil {
			return err
		}
		for _, c := range children {
			moved := *c
			moved.ParentID = f.ParentID
			moved.UpdatedAt = now
			if err := txn.Insert(tblFolders, &moved); err != nil {
				return err
			}
		}
		return txn.Delete(tblFolders, f)
	})
}

// Close is a no-op; the data goes away with the process.
func (s *Store) Close() error {
	return nil
}

func getDocument(txn *memdb.Txn, id string) (*documentRecord, error) {
	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return raw.(*documentRecord), nil
}

func getFolder(txn *memdb.Txn, id string) (*folderRecord, error) {
	raw, err := txn.First(tblFolders, "id", id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	return raw.(*folderRecord), nil
}

// listVersions returns the versions of a document, newest first.
func listVersions(txn *memdb.Txn, documentID string) ([]*versionRecord, error) {
	records, err := collect[versionRecord](txn, tblVersions, "document_id", documentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// collect materialises an index lookup before the caller writes to the
// same table.
func collect[T any](txn *memdb.Txn, table, index string, args ...any) ([]*T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	var out []*T
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*T))
	}
	return out, nil
}

func missingReference(kind, id string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", common.ErrReferentialViolation, kind, id)
	}
	return err
}
