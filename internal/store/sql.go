package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/repositories/repomanager"
)

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db   *sql.DB
	repo repomanager.RepositoryManager
	Settings
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an already migrated database.
func NewSQLStore(db *sql.DB, repo repomanager.RepositoryManager, opts ...Option) *SQLStore {
	return &SQLStore{db: db, repo: repo, Settings: NewSettings(opts...)}
}

func (s *SQLStore) tx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func (s *SQLStore) CreateDocument(ctx context.Context, title, body string, folderID *string) (*models.CreateResult, error) {
	if err := Validate(map[string]error{
		"title":     CheckTitle(title),
		"folder_id": CheckOptionalID(folderID),
	}); err != nil {
		return nil, err
	}

	now := s.Now()
	doc := &models.Document{
		ID:        s.NewID(),
		Title:     models.NormalizeTitle(title),
		CreatedAt: now,
		UpdatedAt: now,
		FolderID:  folderID,
	}
	version := &models.Version{
		ID:         s.NewID(),
		DocumentID: doc.ID,
		Body:       body,
		CreatedAt:  now,
		Kind:       models.VersionKindManual,
	}
	doc.LastSavedVersionID = &version.ID

	err := s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repo.Documents(tx).Insert(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.Versions(tx).Insert(ctx, version); err != nil {
			return err
		}
		return s.repo.Drafts(tx).Delete(ctx, doc.ID)
	})
	if err != nil {
		return nil, wrapTx("create document", err)
	}

	s.Logger.Debug(ctx, "document created", "document_id", doc.ID, "version_id", version.ID)
	return &models.CreateResult{DocumentID: doc.ID, VersionID: version.ID, CreatedAt: now}, nil
}

func (s *SQLStore) SaveManualVersion(ctx context.Context, documentID, title, body string, opts ...SaveOption) (*models.SaveResult, error) {
	if err := Validate(map[string]error{
		"document_id": CheckID(documentID),
		"title":       CheckTitle(title),
	}); err != nil {
		return nil, err
	}

	o := ApplySaveOptions(opts...)
	now := s.Now()
	version := &models.Version{
		ID:         s.NewID(),
		DocumentID: documentID,
		Body:       body,
		CreatedAt:  now,
		Kind:       models.VersionKindManual,
		Note:       o.Note,
	}

	err := s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repo.Versions(tx).Insert(ctx, version); err != nil {
			return err
		}
		err := s.repo.Documents(tx).MarkSaved(ctx, documentID, models.NormalizeTitle(title), version.ID, now)
		if err != nil {
			return missingDocument(documentID, err)
		}
		return s.repo.Drafts(tx).Delete(ctx, documentID)
	})
	if err != nil {
		return nil, wrapTx("save manual version", err)
	}

	s.Logger.Debug(ctx, "manual version saved", "document_id", documentID, "version_id", version.ID)
	return &models.SaveResult{VersionID: version.ID, SavedAt: now}, nil
}

func (s *SQLStore) UpsertDraft(ctx context.Context, documentID, body string, baseVersionID *string) error {
	if err := Validate(map[string]error{
		"document_id":     CheckID(documentID),
		"base_version_id": CheckOptionalID(baseVersionID),
	}); err != nil {
		return err
	}

	now := s.Now()
	draft := &models.Draft{DocumentID: documentID, Body: body, UpdatedAt: now, BaseVersionID: baseVersionID}

	err := s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repo.Drafts(tx).Upsert(ctx, draft); err != nil {
			return err
		}
		return missingDocument(documentID, s.repo.Documents(tx).Touch(ctx, documentID, now))
	})
	return wrapTx("upsert draft", err)
}

func (s *SQLStore) DiscardDraft(ctx context.Context, documentID string) error {
	return wrap("discard draft", s.repo.Drafts(s.db).Delete(ctx, documentID))
}

func (s *SQLStore) DeleteManualVersion(ctx context.Context, documentID, versionID string) error {
	err := s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		versions := s.repo.Versions(tx)
		docs := s.repo.Documents(tx)

		if err := versions.DeleteByID(ctx, documentID, versionID); err != nil {
			return err
		}
		doc, err := docs.GetByID(ctx, documentID)
		if err != nil {
			return err
		}
		if models.Deref(doc.LastSavedVersionID) != versionID {
			return nil
		}

		var next *string
		latest, err := versions.Latest(ctx, documentID)
		switch {
		case err == nil:
			next = &latest.ID
		case !errors.Is(err, common.ErrNotFound):
			return err
		}
		return docs.SetLastSavedVersion(ctx, documentID, next)
	})
	return wrapTx("delete manual version", err)
}

func (s *SQLStore) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.repo.Documents(s.db).DeleteByID(ctx, documentID); err != nil {
		return wrap("delete document", err)
	}
	s.Logger.Debug(ctx, "document deleted", "document_id", documentID)
	return nil
}

func (s *SQLStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	docs, err := s.repo.Documents(s.db).List(ctx)
	return docs, wrap("list documents", err)
}

func (s *SQLStore) SearchDocuments(ctx context.Context, term string) ([]models.Document, error) {
	docs, err := s.repo.Documents(s.db).Search(ctx, term)
	return docs, wrap("search documents", err)
}

func (s *SQLStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return absent(s.repo.Documents(s.db).GetByID(ctx, id))
}

func (s *SQLStore) ListVersions(ctx context.Context, documentID string) ([]models.Version, error) {
	vs, err := s.repo.Versions(s.db).ListByDocument(ctx, documentID)
	return vs, wrap("list versions", err)
}

func (s *SQLStore) GetVersion(ctx context.Context, documentID, versionID string) (*models.Version, error) {
	return absent(s.repo.Versions(s.db).GetByID(ctx, documentID, versionID))
}

func (s *SQLStore) GetLatestManualVersion(ctx context.Context, documentID string) (*models.Version, error) {
	return absent(s.repo.Versions(s.db).Latest(ctx, documentID))
}

func (s *SQLStore) GetDraft(ctx context.Context, documentID string) (*models.Draft, error) {
	return absent(s.repo.Drafts(s.db).Get(ctx, documentID))
}

func (s *SQLStore) RenameDocument(ctx context.Context, documentID, title string) error {
	if err := Validate(map[string]error{
		"document_id": CheckID(documentID),
		"title":       CheckTitle(title),
	}); err != nil {
		return err
	}
	return wrap("rename document", s.repo.Documents(s.db).Rename(ctx, documentID, models.NormalizeTitle(title), s.Now()))
}

func (s *SQLStore) MoveDocument(ctx context.Context, documentID string, folderID *string) error {
	if err := Validate(map[string]error{
		"document_id": CheckID(documentID),
		"folder_id":   CheckOptionalID(folderID),
	}); err != nil {
		return err
	}
	return wrap("move document", s.repo.Documents(s.db).Move(ctx, documentID, folderID, s.Now()))
}

func (s *SQLStore) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := Validate(map[string]error{
		"name":      CheckFolderName(name),
		"parent_id": CheckOptionalID(parentID),
	}); err != nil {
		return nil, err
	}

	now := s.Now()
	f := &models.Folder{ID: s.NewID(), Name: name, ParentID: parentID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Folders(s.db).Insert(ctx, f); err != nil {
		return nil, wrap("create folder", err)
	}
	return f, nil
}

func (s *SQLStore) ListFolders(ctx context.Context) ([]models.Folder, error) {
	fs, err := s.repo.Folders(s.db).List(ctx)
	return fs, wrap("list folders", err)
}

func (s *SQLStore) RenameFolder(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if err := Validate(map[string]error{
		"id":   CheckID(id),
		"name": CheckFolderName(name),
	}); err != nil {
		return err
	}
	return wrap("rename folder", s.repo.Folders(s.db).Rename(ctx, id, name, s.Now()))
}

func (s *SQLStore) DeleteFolder(ctx context.Context, id string) error {
	now := s.Now()
	err := s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		folders := s.repo.Folders(tx)

		f, err := folders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.repo.Documents(tx).MoveFolderContents(ctx, id, f.ParentID, now); err != nil {
			return err
		}
		if _, err := folders.Reparent(ctx, id, f.ParentID, now); err != nil {
			return err
		}
		return folders.DeleteByID(ctx, id)
	})
	return wrapTx("delete folder", err)
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// absent maps common.ErrNotFound to a nil result.
func absent[T any](v *T, err error) (*T, error) {
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
