package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeTimers records scheduled callbacks; tests fire them explicitly.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

// FireAll runs every timer that is still armed and returns how many ran.
func (ft *fakeTimers) FireAll() int {
	ft.mu.Lock()
	var armed []*fakeTimer
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			armed = append(armed, t)
		}
	}
	ft.mu.Unlock()

	for _, t := range armed {
		t.f()
	}
	return len(armed)
}

func (ft *fakeTimers) Armed() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

var errDisk = errors.New("disk full")

// flakyStore fails draft and save writes while failing is set. Discards and
// latest-version reads fail on their own switches.
type flakyStore struct {
	store.Store

	mu          sync.Mutex
	failing     bool
	failDiscard bool
	failLatest  bool
	drafts      int
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyStore) UpsertDraft(ctx context.Context, documentID, body string, base *string) error {
	f.mu.Lock()
	failing := f.failing
	f.drafts++
	f.mu.Unlock()
	if failing {
		return errDisk
	}
	return f.Store.UpsertDraft(ctx, documentID, body, base)
}

func (f *flakyStore) SaveManualVersion(ctx context.Context, documentID, title, body string, opts ...store.SaveOption) (*models.SaveResult, error) {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return nil, errDisk
	}
	return f.Store.SaveManualVersion(ctx, documentID, title, body, opts...)
}

func (f *flakyStore) setFailDiscard(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDiscard = v
}

func (f *flakyStore) setFailLatest(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLatest = v
}

func (f *flakyStore) DiscardDraft(ctx context.Context, documentID string) error {
	f.mu.Lock()
	failing := f.failDiscard
	f.mu.Unlock()
	if failing {
		return errDisk
	}
	return f.Store.DiscardDraft(ctx, documentID)
}

func (f *flakyStore) GetLatestManualVersion(ctx context.Context, documentID string) (*models.Version, error) {
	f.mu.Lock()
	failing := f.failLatest
	f.mu.Unlock()
	if failing {
		return nil, errDisk
	}
	return f.Store.GetLatestManualVersion(ctx, documentID)
}
