package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/models"
)

// Observer receives one call per store operation. *metrics.Metrics
// implements it.
type Observer interface {
	ObserveStoreOperation(backend, operation string, err error, d time.Duration)
}

// Instrumented decorates a Store with metrics and debug logging.
type Instrumented struct {
	next    Store
	backend string
	obs     Observer
	log     logging.Logger
}

var _ Store = (*Instrumented)(nil)

// Instrument wraps next. backend labels the metrics ("sqlite", "postgres",
// "memdb").
func Instrument(next Store, backend string, obs Observer, log logging.Logger) *Instrumented {
	if log == nil {
		log = logging.Nop()
	}
	return &Instrumented{next: next, backend: backend, obs: obs, log: log.With("backend", backend)}
}

func (s *Instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	d := time.Since(start)
	if s.obs != nil {
		s.obs.ObserveStoreOperation(s.backend, op, err, d)
	}
	if err != nil {
		s.log.Warn(ctx, "store operation failed", "operation", op, "error", err, "duration", d)
		return
	}
	s.log.Debug(ctx, "store operation", "operation", op, "duration", d)
}

func (s *Instrumented) CreateDocument(ctx context.Context, title, body string, folderID *string) (res *models.CreateResult, err error) {
	defer func(start time.Time) { s.observe(ctx, "create_document", start, err) }(time.Now())
	return s.next.CreateDocument(ctx, title, body, folderID)
}

func (s *Instrumented) SaveManualVersion(ctx context.Context, documentID, title, body string, opts ...SaveOption) (res *models.SaveResult, err error) {
	defer func(start time.Time) { s.observe(ctx, "save_manual_version", start, err) }(time.Now())
	return s.next.SaveManualVersion(ctx, documentID, title, body, opts...)
}

func (s *Instrumented) UpsertDraft(ctx context.Context, documentID, body string, baseVersionID *string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "upsert_draft", start, err) }(time.Now())
	return s.next.UpsertDraft(ctx, documentID, body, baseVersionID)
}

func (s *Instrumented) DiscardDraft(ctx context.Context, documentID string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "discard_draft", start, err) }(time.Now())
	return s.next.DiscardDraft(ctx, documentID)
}

func (s *Instrumented) DeleteManualVersion(ctx context.Context, documentID, versionID string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "delete_manual_version", start, err) }(time.Now())
	return s.next.DeleteManualVersion(ctx, documentID, versionID)
}

func (s *Instrumented) DeleteDocument(ctx context.Context, documentID string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "delete_document", start, err) }(time.Now())
	return s.next.DeleteDocument(ctx, documentID)
}

func (s *Instrumented) ListDocuments(ctx context.Context) (docs []models.Document, err error) {
	defer func(start time.Time) { s.observe(ctx, "list_documents", start, err) }(time.Now())
	return s.next.ListDocuments(ctx)
}

func (s *Instrumented) SearchDocuments(ctx context.Context, term string) (docs []models.Document, err error) {
	defer func(start time.Time) { s.observe(ctx, "search_documents", start, err) }(time.Now())
	return s.next.SearchDocuments(ctx, term)
}

func (s *Instrumented) GetDocument(ctx context.Context, id string) (doc *models.Document, err error) {
	defer func(start time.Time) { s.observe(ctx, "get_document", start, err) }(time.Now())
	return s.next.GetDocument(ctx, id)
}

func (s *Instrumented) ListVersions(ctx context.Context, documentID string) (vs []models.Version, err error) {
	defer func(start time.Time) { s.observe(ctx, "list_versions", start, err) }(time.Now())
	return s.next.ListVersions(ctx, documentID)
}

func (s *Instrumented) GetVersion(ctx context.Context, documentID, versionID string) (v *models.Version, err error) {
	defer func(start time.Time) { s.observe(ctx, "get_version", start, err) }(time.Now())
	return s.next.GetVersion(ctx, documentID, versionID)
}

func (s *Instrumented) GetLatestManualVersion(ctx context.Context, documentID string) (v *models.Version, err error) {
	defer func(start time.Time) { s.observe(ctx, "get_latest_manual_version", start, err) }(time.Now())
	return s.next.GetLatestManualVersion(ctx, documentID)
}

func (s *Instrumented) GetDraft(ctx context.Context, documentID string) (d *models.Draft, err error) {
	defer func(start time.Time) { s.observe(ctx, "get_draft", start, err) }(time.Now())
	return s.next.GetDraft(ctx, documentID)
}

func (s *Instrumented) RenameDocument(ctx context.Context, documentID, title string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "rename_document", start, err) }(time.Now())
	return s.next.RenameDocument(ctx, documentID, title)
}

func (s *Instrumented) MoveDocument(ctx context.Context, documentID string, folderID *string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "move_document", start, err) }(time.Now())
	return s.next.MoveDocument(ctx, documentID, folderID)
}

func (s *Instrumented) CreateFolder(ctx context.Context, name string, parentID *string) (f *models.Folder, err error) {
	defer func(start time.Time) { s.observe(ctx, "create_folder", start, err) }(time.Now())
	return s.next.CreateFolder(ctx, name, parentID)
}

func (s *Instrumented) ListFolders(ctx context.Context) (fs []models.Folder, err error) {
	defer func(start time.Time) { s.observe(ctx, "list_folders", start, err) }(time.Now())
	return s.next.ListFolders(ctx)
}

func (s *Instrumented) RenameFolder(ctx context.Context, id, name string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "rename_folder", start, err) }(time.Now())
	return s.next.RenameFolder(ctx, id, name)
}

func (s *Instrumented) DeleteFolder(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "delete_folder", start, err) }(time.Now())
	return s.next.DeleteFolder(ctx, id)
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
