package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/dbx/dbxtest"
	"github.com/dmitrijs2005/textkeeper/internal/models"
)

func TestUpsert_OverwritesSingleSlot(t *testing.T) {
	db := dbxtest.OpenSQLite(t)
	_, err := db.Exec(`INSERT INTO document (id, title, created_at, updated_at) VALUES ('d', 't', 1, 1)`)
	require.NoError(t, err)

	r := NewSQLRepository(db)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	base := "v1"
	require.NoError(t, r.Upsert(ctx, &models.Draft{DocumentID: "d", Body: "first", UpdatedAt: at, BaseVersionID: &base}))
	require.NoError(t, r.Upsert(ctx, &models.Draft{DocumentID: "d", Body: "second", UpdatedAt: at.Add(time.Second)}))

	assert.Equal(t, 1, dbxtest.Count(t, db, "draft"))

	got, err := r.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Body)
	assert.Equal(t, at.Add(time.Second), got.UpdatedAt)
	assert.Nil(t, got.BaseVersionID)
}

func TestUpsert_UnknownDocumentFails(t *testing.T) {
	db := dbxtest.OpenSQLite(t)
	err := NewSQLRepository(db).Upsert(context.Background(), &models.Draft{DocumentID: "ghost", Body: "x"})
	require.Error(t, err)
}

func TestGetAndDelete(t *testing.T) {
	db := dbxtest.OpenSQLite(t)
	_, err := db.Exec(`INSERT INTO document (id, title, created_at, updated_at) VALUES ('d', 't', 1, 1)`)
	require.NoError(t, err)

	r := NewSQLRepository(db)
	ctx := context.Background()

	_, err = r.Get(ctx, "d")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Upsert(ctx, &models.Draft{DocumentID: "d", Body: "x"}))
	require.NoError(t, r.Delete(ctx, "d"))
	require.NoError(t, r.Delete(ctx, "d"), "delete is idempotent")

	_, err = r.Get(ctx, "d")
	require.ErrorIs(t, err, common.ErrNotFound)
}
