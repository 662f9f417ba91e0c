package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/store"
	"github.com/dmitrijs2005/textkeeper/internal/store/memory"
	"github.com/dmitrijs2005/textkeeper/internal/store/storetest"
)

type call struct {
	backend, op string
	failed      bool
}

type recordingObserver struct {
	calls []call
}

func (r *recordingObserver) ObserveStoreOperation(backend, op string, err error, _ time.Duration) {
	r.calls = append(r.calls, call{backend: backend, op: op, failed: err != nil})
}

func TestInstrumentedContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) store.Store {
		inner, err := memory.New(opts...)
		require.NoError(t, err)
		return store.Instrument(inner, "memdb", &recordingObserver{}, nil)
	})
}

func TestInstrument_RecordsOutcome(t *testing.T) {
	inner, err := memory.New()
	require.NoError(t, err)
	obs := &recordingObserver{}
	s := store.Instrument(inner, "memdb", obs, nil)
	ctx := context.Background()

	res, err := s.CreateDocument(ctx, "T", "", nil)
	require.NoError(t, err)
	err = s.DeleteManualVersion(ctx, res.DocumentID, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	assert.Equal(t, []call{
		{backend: "memdb", op: "create_document"},
		{backend: "memdb", op: "delete_manual_version", failed: true},
	}, obs.calls)
}
