// Package storetest holds the behavioural contract every store.Store backend
// must satisfy. Backends call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

// Factory opens an empty store configured with opts. The store is closed by
// the caller's cleanup.
type Factory func(t *testing.T, opts ...store.Option) store.Store

// FixedClock always returns the same instant; the store's monotonic wrapper
// still yields strictly increasing timestamps.
func FixedClock() time.Time {
	return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

// SequentialIDs returns an id generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

// Run executes the contract suite against the backend built by open.
func Run(t *testing.T, open Factory) {
	t.Helper()

	newStore := func(t *testing.T) store.Store {
		return open(t, store.WithClock(FixedClock), store.WithIDGenerator(SequentialIDs("id")))
	}

	t.Run("CreateDocumentWithEmptyBody", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "", nil)
		require.NoError(t, err)

		versions, err := s.ListVersions(ctx, res.DocumentID)
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, "", versions[0].Body)
		assert.Equal(t, res.VersionID, versions[0].ID)
		assert.Equal(t, models.VersionKindManual, versions[0].Kind)

		draft, err := s.GetDraft(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, draft)

		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "T", doc.Title)
		assert.Equal(t, res.VersionID, models.Deref(doc.LastSavedVersionID))
		assert.Equal(t, res.CreatedAt, doc.CreatedAt)
		assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
	})

	t.Run("BlankTitleDefaults", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "   ", "body", nil)
		require.NoError(t, err)
		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTitle, doc.Title)

		_, err = s.SaveManualVersion(ctx, res.DocumentID, "", "next")
		require.NoError(t, err)
		doc, err = s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTitle, doc.Title)
	})

	t.Run("SaveClearsDraftAndKeepsHistory", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "Notes", "first", nil)
		require.NoError(t, err)
		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "work in progress", &res.VersionID))

		saved, err := s.SaveManualVersion(ctx, res.DocumentID, "Notes v2", "second", store.WithNote("checkpoint"))
		require.NoError(t, err)
		assert.True(t, saved.SavedAt.After(res.CreatedAt))

		draft, err := s.GetDraft(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, draft)

		latest, err := s.GetLatestManualVersion(ctx, res.DocumentID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "second", latest.Body)
		assert.Equal(t, saved.VersionID, latest.ID)
		assert.Equal(t, "checkpoint", models.Deref(latest.Note))

		versions, err := s.ListVersions(ctx, res.DocumentID)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, saved.VersionID, versions[0].ID)
		assert.Equal(t, "first", versions[1].Body, "earlier version is untouched")

		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, "Notes v2", doc.Title)
		assert.Equal(t, saved.VersionID, models.Deref(doc.LastSavedVersionID))
		assert.Equal(t, saved.SavedAt, doc.UpdatedAt)
	})

	t.Run("UpsertDraftKeepsSingleSlot", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "base", nil)
		require.NoError(t, err)
		before, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)

		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "b1", &res.VersionID))
		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "b2", &res.VersionID))

		draft, err := s.GetDraft(ctx, res.DocumentID)
		require.NoError(t, err)
		require.NotNil(t, draft)
		assert.Equal(t, "b2", draft.Body)
		assert.Equal(t, res.VersionID, models.Deref(draft.BaseVersionID))

		after, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "draft write bumps updated_at")
		assert.Equal(t, draft.UpdatedAt, after.UpdatedAt)

		versions, err := s.ListVersions(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Len(t, versions, 1, "autosave never creates versions")
	})

	t.Run("DiscardDraftIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "base", nil)
		require.NoError(t, err)
		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "x", nil))

		require.NoError(t, s.DiscardDraft(ctx, res.DocumentID))
		require.NoError(t, s.DiscardDraft(ctx, res.DocumentID))

		draft, err := s.GetDraft(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, draft)

		latest, err := s.GetLatestManualVersion(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, "base", latest.Body)
	})

	t.Run("DeleteLatestVersionRepoints", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "v1", nil)
		require.NoError(t, err)
		v2, err := s.SaveManualVersion(ctx, res.DocumentID, "T", "v2")
		require.NoError(t, err)
		v3, err := s.SaveManualVersion(ctx, res.DocumentID, "T", "v3")
		require.NoError(t, err)

		require.NoError(t, s.DeleteManualVersion(ctx, res.DocumentID, v3.VersionID))
		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, v2.VersionID, models.Deref(doc.LastSavedVersionID))

		require.NoError(t, s.DeleteManualVersion(ctx, res.DocumentID, res.VersionID))
		doc, err = s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, v2.VersionID, models.Deref(doc.LastSavedVersionID), "deleting an older version leaves the pointer")

		require.NoError(t, s.DeleteManualVersion(ctx, res.DocumentID, v2.VersionID))
		doc, err = s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, doc.LastSavedVersionID)

		latest, err := s.GetLatestManualVersion(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("DeleteMissingVersion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "v1", nil)
		require.NoError(t, err)
		other, err := s.CreateDocument(ctx, "O", "o1", nil)
		require.NoError(t, err)

		err = s.DeleteManualVersion(ctx, res.DocumentID, "missing")
		require.ErrorIs(t, err, common.ErrNotFound)

		err = s.DeleteManualVersion(ctx, res.DocumentID, other.VersionID)
		require.ErrorIs(t, err, common.ErrNotFound, "a version of another document is not addressable")

		versions, err := s.ListVersions(ctx, other.DocumentID)
		require.NoError(t, err)
		assert.Len(t, versions, 1)
	})

	t.Run("DeleteDocumentCascades", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "v1", nil)
		require.NoError(t, err)
		_, err = s.SaveManualVersion(ctx, res.DocumentID, "T", "v2")
		require.NoError(t, err)
		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "draft", nil))

		require.NoError(t, s.DeleteDocument(ctx, res.DocumentID))

		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, doc)

		versions, err := s.ListVersions(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Empty(t, versions)

		draft, err := s.GetDraft(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, draft)

		require.ErrorIs(t, s.DeleteDocument(ctx, res.DocumentID), common.ErrNotFound)
	})

	t.Run("MissingDocumentReferences", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.SaveManualVersion(ctx, "ghost", "T", "b")
		require.ErrorIs(t, err, common.ErrReferentialViolation)

		err = s.UpsertDraft(ctx, "ghost", "b", nil)
		require.ErrorIs(t, err, common.ErrReferentialViolation)

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("QueriesReportAbsenceAsNil", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		doc, err := s.GetDocument(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, doc)

		v, err := s.GetLatestManualVersion(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, v)

		v, err = s.GetVersion(ctx, "ghost", "ghost")
		require.NoError(t, err)
		assert.Nil(t, v)

		vs, err := s.ListVersions(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("ValidationRejectsBadInput", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.SaveManualVersion(ctx, "", "T", "b")
		require.ErrorIs(t, err, common.ErrValidation)

		_, err = s.CreateDocument(ctx, strings.Repeat("x", store.MaxTitleLength+1), "", nil)
		require.ErrorIs(t, err, common.ErrValidation)

		empty := ""
		_, err = s.CreateDocument(ctx, "T", "", &empty)
		require.ErrorIs(t, err, common.ErrValidation)

		_, err = s.CreateFolder(ctx, "   ", nil)
		require.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("ListOrdersByUpdatedAt", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a, err := s.CreateDocument(ctx, "A", "", nil)
		require.NoError(t, err)
		b, err := s.CreateDocument(ctx, "B", "", nil)
		require.NoError(t, err)
		c, err := s.CreateDocument(ctx, "C", "", nil)
		require.NoError(t, err)

		require.NoError(t, s.UpsertDraft(ctx, a.DocumentID, "touch", nil))

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{a.DocumentID, c.DocumentID, b.DocumentID}, ids(docs))
	})

	t.Run("SearchMatchesTitleOrBody", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		byTitle, err := s.CreateDocument(ctx, "Shopping List", "eggs", nil)
		require.NoError(t, err)
		byBody, err := s.CreateDocument(ctx, "Journal", "nothing", nil)
		require.NoError(t, err)
		_, err = s.SaveManualVersion(ctx, byBody.DocumentID, "Journal", "a LIST of things")
		require.NoError(t, err)
		_, err = s.SaveManualVersion(ctx, byBody.DocumentID, "Journal", "the list again")
		require.NoError(t, err)
		_, err = s.CreateDocument(ctx, "Other", "unrelated", nil)
		require.NoError(t, err)

		hits, err := s.SearchDocuments(ctx, "list")
		require.NoError(t, err)
		assert.Equal(t, []string{byBody.DocumentID, byTitle.DocumentID}, ids(hits))

		none, err := s.SearchDocuments(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, none)

		all, err := s.SearchDocuments(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("SearchFoldsNonASCIICase", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "ÜBERSICHT", "Größe ÄRGER", nil)
		require.NoError(t, err)
		_, err = s.CreateDocument(ctx, "Plain", "nothing", nil)
		require.NoError(t, err)

		for _, term := range []string{"übersicht", "ÜberSicht", "ärger", "ÄRGER", " ärger ", "größe"} {
			hits, err := s.SearchDocuments(ctx, term)
			require.NoError(t, err, term)
			assert.Equal(t, []string{res.DocumentID}, ids(hits), term)
		}
	})

	t.Run("DraftsAreNotSearched", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "body", nil)
		require.NoError(t, err)
		require.NoError(t, s.UpsertDraft(ctx, res.DocumentID, "secret word", nil))

		hits, err := s.SearchDocuments(ctx, "secret")
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("GetVersion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "v1", nil)
		require.NoError(t, err)
		v, err := s.GetVersion(ctx, res.DocumentID, res.VersionID)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "v1", v.Body)

		v, err = s.GetVersion(ctx, "other", res.VersionID)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("RenameAndMoveDocument", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "", nil)
		require.NoError(t, err)
		f, err := s.CreateFolder(ctx, "Work", nil)
		require.NoError(t, err)

		require.NoError(t, s.RenameDocument(ctx, res.DocumentID, "Renamed"))
		require.NoError(t, s.MoveDocument(ctx, res.DocumentID, &f.ID))

		doc, err := s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", doc.Title)
		assert.Equal(t, f.ID, models.Deref(doc.FolderID))

		require.NoError(t, s.MoveDocument(ctx, res.DocumentID, nil))
		doc, err = s.GetDocument(ctx, res.DocumentID)
		require.NoError(t, err)
		assert.Nil(t, doc.FolderID)

		ghost := "ghost"
		require.ErrorIs(t, s.MoveDocument(ctx, res.DocumentID, &ghost), common.ErrReferentialViolation)
		require.ErrorIs(t, s.RenameDocument(ctx, "ghost", "x"), common.ErrNotFound)

		_, err = s.CreateDocument(ctx, "T", "", &ghost)
		require.ErrorIs(t, err, common.ErrReferentialViolation)
	})

	t.Run("Folders", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		top, err := s.CreateFolder(ctx, "Top", nil)
		require.NoError(t, err)
		mid, err := s.CreateFolder(ctx, " Mid ", &top.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mid", mid.Name)
		leaf, err := s.CreateFolder(ctx, "Leaf", &mid.ID)
		require.NoError(t, err)

		doc, err := s.CreateDocument(ctx, "Filed", "", &mid.ID)
		require.NoError(t, err)

		require.NoError(t, s.RenameFolder(ctx, top.ID, "Root"))
		require.ErrorIs(t, s.RenameFolder(ctx, "ghost", "x"), common.ErrNotFound)

		ghost := "ghost"
		_, err = s.CreateFolder(ctx, "Orphan", &ghost)
		require.ErrorIs(t, err, common.ErrReferentialViolation)

		require.NoError(t, s.DeleteFolder(ctx, mid.ID))
		require.ErrorIs(t, s.DeleteFolder(ctx, mid.ID), common.ErrNotFound)

		folders, err := s.ListFolders(ctx)
		require.NoError(t, err)
		require.Len(t, folders, 2)
		assert.Equal(t, "Leaf", folders[0].Name)
		assert.Equal(t, top.ID, models.Deref(folders[0].ParentID), "children move up to the deleted folder's parent")
		assert.Equal(t, "Root", folders[1].Name)
		assert.Equal(t, leaf.ID, folders[0].ID)

		got, err := s.GetDocument(ctx, doc.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, top.ID, models.Deref(got.FolderID), "documents move up too")
	})

	t.Run("TimestampsStrictlyIncrease", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		res, err := s.CreateDocument(ctx, "T", "0", nil)
		require.NoError(t, err)
		prev := res.CreatedAt
		for i := 1; i <= 5; i++ {
			saved, err := s.SaveManualVersion(ctx, res.DocumentID, "T", fmt.Sprint(i))
			require.NoError(t, err)
			assert.True(t, saved.SavedAt.After(prev))
			prev = saved.SavedAt
		}

		versions, err := s.ListVersions(ctx, res.DocumentID)
		require.NoError(t, err)
		require.Len(t, versions, 6)
		for i, v := range versions {
			assert.Equal(t, fmt.Sprint(5-i), v.Body)
		}
	})
}

func ids(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
