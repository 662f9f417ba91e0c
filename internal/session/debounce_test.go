package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_TriggerReplacesPendingTask(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncer(time.Second, ft.AfterFunc)

	var got []string
	d.Trigger("doc", func() { got = append(got, "first") })
	d.Trigger("doc", func() { got = append(got, "second") })

	assert.Equal(t, 1, ft.Armed())
	assert.Equal(t, 1, ft.FireAll())
	assert.Equal(t, []string{"second"}, got)
	assert.False(t, d.Pending("doc"))
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncer(time.Second, ft.AfterFunc)

	var n atomic.Int32
	d.Trigger("a", func() { n.Add(1) })
	d.Trigger("b", func() { n.Add(1) })

	assert.Equal(t, 2, ft.FireAll())
	assert.Equal(t, int32(2), n.Load())
}

func TestDebouncer_CancelAndFlush(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncer(time.Second, ft.AfterFunc)

	ran := false
	d.Trigger("doc", func() { ran = true })
	assert.True(t, d.Cancel("doc"))
	assert.False(t, d.Cancel("doc"))
	assert.Equal(t, 0, ft.FireAll())
	assert.False(t, ran)

	d.Trigger("doc", func() { ran = true })
	assert.True(t, d.Flush("doc"))
	assert.True(t, ran)
	assert.False(t, d.Flush("doc"))
	assert.Equal(t, 0, ft.FireAll(), "a flushed task does not run twice")
}

func TestDebouncer_StaleFireIsIgnored(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncer(time.Second, ft.AfterFunc)

	var got []string
	d.Trigger("doc", func() { got = append(got, "old") })
	stale := ft.timers[0]
	d.Trigger("doc", func() { got = append(got, "new") })

	// a timer that fired just as it was being replaced
	stale.f()
	assert.Empty(t, got)

	ft.FireAll()
	assert.Equal(t, []string{"new"}, got)
}

func TestDebouncer_Stop(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncer(time.Second, ft.AfterFunc)

	d.Trigger("doc", func() { t.Fatal("must not run") })
	d.Stop()
	d.Trigger("doc", func() { t.Fatal("must not run") })

	assert.Equal(t, 0, ft.FireAll())
}

func TestDebouncer_RealTimer(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})
	d.Trigger("doc", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced task did not run")
	}
}
