package app

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/config"
)

func testConfig(backend, dsn string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Backend = backend
	c.DSN = dsn
	c.LogLevel = "debug"
	return c
}

func TestNewApp_Memory(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer

	a, err := NewApp(ctx, testConfig(config.BackendMemory, ""), &logs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	res, err := a.Store().CreateDocument(ctx, "Doc", "body", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.DocumentID)
	assert.Contains(t, logs.String(), "create_document")
}

func TestNewApp_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	a, err := NewApp(ctx, testConfig(config.BackendSQLite, path), &bytes.Buffer{})
	require.NoError(t, err)
	res, err := a.Store().CreateDocument(ctx, "Persisted", "x", nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := NewApp(ctx, testConfig(config.BackendSQLite, path), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	doc, err := b.Store().GetDocument(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Persisted", doc.Title)
}

func TestNewApp_StorageUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "notes.db")
	_, err := NewApp(context.Background(), testConfig(config.BackendSQLite, path), &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := testConfig(config.BackendMemory, "")
	c.LogLevel = "loud"
	_, err := NewApp(context.Background(), c, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewSession_CountsAutosaves(t *testing.T) {
	ctx := context.Background()
	c := testConfig(config.BackendMemory, "")
	c.AutosaveDelay = 10 * time.Millisecond

	a, err := NewApp(ctx, c, &bytes.Buffer{})
	require.NoError(t, err)
	res, err := a.Store().CreateDocument(ctx, "Doc", "v1", nil)
	require.NoError(t, err)

	s := a.NewSession(res.DocumentID)
	t.Cleanup(s.Close)
	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Edit("v1 edited"))

	require.Eventually(t, func() bool {
		d, err := a.Store().GetDraft(ctx, res.DocumentID)
		return err == nil && d != nil && d.Body == "v1 edited"
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		families, err := a.Metrics().Registry().Gather()
		if err != nil {
			return false
		}
		for _, f := range families {
			if f.GetName() == "textkeeper_session_autosaves_total" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServe_StopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := testConfig(config.BackendMemory, "")
	c.PreviewAddr = addr
	a, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_BadAddress(t *testing.T) {
	c := testConfig(config.BackendMemory, "")
	c.PreviewAddr = "127.0.0.1:99999"
	a, err := NewApp(context.Background(), c, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Error(t, a.Serve(context.Background()))
}
