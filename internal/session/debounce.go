package session

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted by
// SystemAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// SystemAfterFunc schedules on the runtime timer.
func SystemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer keeps at most one pending task per key. Triggering a key again
// replaces its pending task and restarts the delay.
type Debouncer struct {
	delay     time.Duration
	afterFunc AfterFunc

	mu      sync.Mutex
	seq     uint64
	pending map[string]*task
	stopped bool
}

type task struct {
	seq   uint64
	timer Timer
	fn    func()
}

// NewDebouncer returns a Debouncer running tasks delay after their last
// trigger. A nil afterFunc uses SystemAfterFunc.
func NewDebouncer(delay time.Duration, afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = SystemAfterFunc
	}
	return &Debouncer{delay: delay, afterFunc: afterFunc, pending: map[string]*task{}}
}

// Trigger schedules fn for key, cancelling the task already pending for it.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if old, ok := d.pending[key]; ok {
		old.timer.Stop()
	}

	d.seq++
	t := &task{seq: d.seq, fn: fn}
	d.pending[key] = t
	seq := t.seq
	t.timer = d.afterFunc(d.delay, func() { d.fire(key, seq) })
}

func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	t, ok := d.pending[key]
	if !ok || t.seq != seq {
		// superseded or cancelled after the timer had already started
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	t.fn()
}

// Cancel drops the pending task for key. It reports whether one existed.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.pending[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(d.pending, key)
	return true
}

// Flush runs the pending task for key immediately on the calling goroutine.
// It reports whether a task ran.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	t, ok := d.pending[key]
	if ok {
		t.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		t.fn()
	}
	return ok
}

// Pending reports whether a task is scheduled for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending task and rejects new ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.pending {
		t.timer.Stop()
		delete(d.pending, key)
	}
	d.stopped = true
}
