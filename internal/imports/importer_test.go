package imports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/store"
	"github.com/dmitrijs2005/textkeeper/internal/store/memory"
	"github.com/dmitrijs2005/textkeeper/internal/store/storetest"
)

func newImporter(t *testing.T) (*Importer, store.Store) {
	t.Helper()
	st, err := memory.New(store.WithIDGenerator(storetest.SequentialIDs("id")))
	require.NoError(t, err)
	return NewImporter(st, nil), st
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.md"))
	assert.True(t, Supported("a.MARKDOWN"))
	assert.True(t, Supported("dir/a.txt"))
	assert.False(t, Supported("a.pdf"))
	assert.False(t, Supported("README"))
}

func TestImportFile_FrontMatterTitle(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	path := writeFile(t, t.TempDir(), "draft.md", "---\ntitle: Meeting notes\n---\n# Agenda\n")

	res, err := imp.ImportFile(ctx, path, nil)
	require.NoError(t, err)

	doc, err := st.GetDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Meeting notes", doc.Title)

	v, err := st.GetLatestManualVersion(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, res.VersionID, v.ID)
	assert.Equal(t, "# Agenda\n", v.Body)
}

func TestImportFile_TitleFromFileName(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	path := writeFile(t, t.TempDir(), "shopping list.txt", "milk\neggs\n")

	res, err := imp.ImportFile(ctx, path, nil)
	require.NoError(t, err)

	doc, err := st.GetDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "shopping list", doc.Title)

	v, err := st.GetLatestManualVersion(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "milk\neggs\n", v.Body)
}

func TestImportFile_IntoFolder(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	f, err := st.CreateFolder(ctx, "Inbox", nil)
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "a.md", "body")
	res, err := imp.ImportFile(ctx, path, &f.ID)
	require.NoError(t, err)

	doc, err := st.GetDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc.FolderID)
	assert.Equal(t, f.ID, *doc.FolderID)

	missing := "nope"
	_, err = imp.ImportFile(ctx, path, &missing)
	assert.ErrorIs(t, err, common.ErrReferentialViolation)
}

func TestImportFile_Errors(t *testing.T) {
	ctx := context.Background()
	imp, _ := newImporter(t)
	dir := t.TempDir()

	_, err := imp.ImportFile(ctx, writeFile(t, dir, "img.png", "x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = imp.ImportFile(ctx, filepath.Join(dir, "missing.md"), nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestImportPending_CollectsFailures(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	dir := t.TempDir()

	var q Queue
	q.Push(
		writeFile(t, dir, "one.md", "1"),
		filepath.Join(dir, "gone.md"),
		writeFile(t, dir, "two.txt", "2"),
	)

	results, err := imp.ImportPending(ctx, &q, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Len(t, results, 2)
	assert.Equal(t, 0, q.Len())

	docs, err := st.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestImportPending_Empty(t *testing.T) {
	imp, _ := newImporter(t)
	results, err := imp.ImportPending(context.Background(), &Queue{}, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	res, err := st.CreateDocument(ctx, "Doc", "saved body", nil)
	require.NoError(t, err)
	require.NoError(t, st.UpsertDraft(ctx, res.DocumentID, "draft body", &res.VersionID))

	dir := t.TempDir()
	saved := filepath.Join(dir, "out", "saved.md")
	draft := filepath.Join(dir, "draft.md")

	require.NoError(t, imp.Export(ctx, res.DocumentID, saved, false))
	require.NoError(t, imp.Export(ctx, res.DocumentID, draft, true))

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "saved body", string(data))

	data, err = os.ReadFile(draft)
	require.NoError(t, err)
	assert.Equal(t, "draft body", string(data))
}

func TestExport_DraftRequestedButAbsent(t *testing.T) {
	ctx := context.Background()
	imp, st := newImporter(t)
	res, err := st.CreateDocument(ctx, "Doc", "saved", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "x.md")
	require.NoError(t, imp.Export(ctx, res.DocumentID, path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}

func TestExport_MissingDocument(t *testing.T) {
	imp, _ := newImporter(t)
	err := imp.Export(context.Background(), "missing", filepath.Join(t.TempDir(), "x.md"), false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
