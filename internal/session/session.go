// Package session drives the editing lifecycle of one document on top of a
// store.Store: an in-memory buffer, a debounced draft autosave and explicit
// manual saves.
//
// States:
//
//	Saved          buffer equals the latest manual version, no draft
//	Unsaved        buffer differs from what storage holds, autosave armed
//	DraftPending   buffer equals the stored draft
//	ViewingHistory a past version is displayed read-only
//
// Storage writes issued by one session are serialised. A manual save cancels
// the pending autosave, and an autosave that was already waiting when the
// save started is dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/textkeeper/internal/common"
	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/models"
	"github.com/dmitrijs2005/textkeeper/internal/store"
)

// DefaultDelay is the autosave debounce delay.
const DefaultDelay = 1500 * time.Millisecond

var (
	// ErrReadOnly is returned when editing while a past version is displayed.
	ErrReadOnly = errors.New("session: history view is read-only")
	// ErrNotViewing is returned by history actions outside the history view.
	ErrNotViewing = errors.New("session: not viewing a version")
)

// State is the editing state of a session.
type State int

const (
	StateSaved State = iota
	StateUnsaved
	StateDraftPending
	StateViewingHistory
)

func (s State) String() string {
	switch s {
	case StateSaved:
		return "saved"
	case StateUnsaved:
		return "unsaved"
	case StateDraftPending:
		return "draft pending"
	case StateViewingHistory:
		return "viewing history"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a Session.
type Option func(*Session)

// WithDebouncer shares a debouncer between sessions.
func WithDebouncer(d *Debouncer) Option {
	return func(s *Session) { s.debouncer = d }
}

// WithDelay sets the autosave delay of the session's own debouncer.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// OnError receives failures of background autosaves.
func OnError(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// OnAutosave is called after every background draft write with its outcome.
func OnAutosave(fn func(error)) Option {
	return func(s *Session) { s.onAutosave = fn }
}

// Session is the editing state of one document.
type Session struct {
	store      store.Store
	documentID string
	debouncer  *Debouncer
	delay      time.Duration
	log        logging.Logger
	onError    func(error)
	onAutosave func(error)

	// serialises storage writes
	writeMu sync.Mutex

	mu        sync.Mutex
	ctx       context.Context
	state     State
	prevState State
	// stored is the state the buffer returns to when it matches persisted
	stored     State
	buffer     string
	persisted  string
	savedBody  string
	baseID     *string
	title      string
	viewing    *models.Version
	generation uint64
}

// New creates a session for documentID. Call Open before use.
func New(st store.Store, documentID string, opts ...Option) *Session {
	s := &Session{
		store:      st,
		documentID: documentID,
		delay:      DefaultDelay,
		log:        logging.Nop(),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.debouncer == nil {
		s.debouncer = NewDebouncer(s.delay, nil)
	}
	s.log = s.log.With("document_id", documentID)
	return s
}

// Open loads the document. A stored draft wins over the latest manual
// version.
func (s *Session) Open(ctx context.Context) error {
	doc, err := s.store.GetDocument(ctx, s.documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", s.documentID, common.ErrNotFound)
	}
	latest, err := s.store.GetLatestManualVersion(ctx, s.documentID)
	if err != nil {
		return fmt.Errorf("load latest version: %w", err)
	}
	draft, err := s.store.GetDraft(ctx, s.documentID)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = context.WithoutCancel(ctx)
	s.title = doc.Title
	s.savedBody = ""
	s.baseID = nil
	if latest != nil {
		s.savedBody = latest.Body
		s.baseID = &latest.ID
	}

	if draft != nil {
		s.buffer, s.persisted = draft.Body, draft.Body
		s.state, s.stored = StateDraftPending, StateDraftPending
		if draft.BaseVersionID != nil {
			s.baseID = draft.BaseVersionID
		}
	} else {
		s.buffer, s.persisted = s.savedBody, s.savedBody
		s.state, s.stored = StateSaved, StateSaved
	}
	s.viewing = nil
	s.generation++
	return nil
}

// Edit replaces the buffer and arms the autosave when it differs from what
// storage holds.
func (s *Session) Edit(body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateViewingHistory {
		return ErrReadOnly
	}
	s.setBufferLocked(body)
	return nil
}

// Append adds text to the end of the buffer.
func (s *Session) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateViewingHistory {
		return ErrReadOnly
	}
	s.setBufferLocked(s.buffer + text)
	return nil
}

func (s *Session) setBufferLocked(body string) {
	s.buffer = body
	s.generation++

	if body == s.persisted {
		s.state = s.stored
		s.debouncer.Cancel(s.documentID)
		return
	}
	s.state = StateUnsaved
	gen := s.generation
	s.debouncer.Trigger(s.documentID, func() { s.autosave(gen) })
}

func (s *Session) autosave(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if gen != s.generation || s.editStateLocked() != StateUnsaved {
		s.mu.Unlock()
		return
	}
	ctx, body, base := s.ctx, s.buffer, s.baseID
	s.mu.Unlock()

	err := s.store.UpsertDraft(ctx, s.documentID, body, base)
	if s.onAutosave != nil {
		s.onAutosave(err)
	}
	if err != nil {
		s.log.Error(ctx, "autosave failed", "error", err)
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	s.mu.Lock()
	s.persisted, s.stored = body, StateDraftPending
	if gen == s.generation {
		s.setEditStateLocked(StateDraftPending)
	}
	s.mu.Unlock()
	s.log.Debug(ctx, "draft autosaved", "bytes", len(body))
}

// editStateLocked is the editing state, looking through the history view.
func (s *Session) editStateLocked() State {
	if s.state == StateViewingHistory {
		return s.prevState
	}
	return s.state
}

func (s *Session) setEditStateLocked(st State) {
	if s.state == StateViewingHistory {
		s.prevState = st
		return
	}
	s.state = st
}

// Flush writes a pending autosave now. It reports whether one was pending.
func (s *Session) Flush() bool {
	return s.debouncer.Flush(s.documentID)
}

// Save commits the buffer as a new manual version. An empty title keeps the
// current one. On failure the buffer and state are left untouched.
func (s *Session) Save(ctx context.Context, title string, opts ...store.SaveOption) (*models.SaveResult, error) {
	s.debouncer.Cancel(s.documentID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.state == StateViewingHistory {
		s.mu.Unlock()
		return nil, ErrReadOnly
	}
	if title == "" {
		title = s.title
	}
	body := s.buffer
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	res, err := s.store.SaveManualVersion(ctx, s.documentID, title, body, opts...)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation && s.state == StateUnsaved {
			// keep autosaving the edits the failed save did not persist
			s.setBufferLocked(s.buffer)
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.title = models.NormalizeTitle(title)
	s.savedBody, s.persisted, s.stored = body, body, StateSaved
	s.baseID = &res.VersionID
	if gen == s.generation {
		s.state = StateSaved
	}
	return res, nil
}

// Discard drops the draft and reloads the latest manual version. If the
// draft cannot be deleted the buffer is kept and autosave stays armed.
func (s *Session) Discard(ctx context.Context) error {
	s.debouncer.Cancel(s.documentID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.state == StateViewingHistory {
		s.mu.Unlock()
		return ErrReadOnly
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	if err := s.store.DiscardDraft(ctx, s.documentID); err != nil {
		s.mu.Lock()
		if gen == s.generation && s.state == StateUnsaved {
			// the buffer is still the only copy of these edits
			s.setBufferLocked(s.buffer)
		}
		s.mu.Unlock()
		return err
	}

	latest, err := s.store.GetLatestManualVersion(ctx, s.documentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// No draft row exists from here on.
	if err != nil {
		s.log.Warn(ctx, "reload after discard failed, using cached version", "error", err)
	} else {
		s.savedBody, s.baseID = "", nil
		if latest != nil {
			s.savedBody, s.baseID = latest.Body, &latest.ID
		}
	}
	s.buffer, s.persisted = s.savedBody, s.savedBody
	s.state, s.stored = StateSaved, StateSaved
	s.generation++
	if err != nil {
		return fmt.Errorf("draft discarded, reload latest version: %w", err)
	}
	return nil
}

// ViewVersion displays a past version read-only.
func (s *Session) ViewVersion(ctx context.Context, versionID string) (*models.Version, error) {
	v, err := s.store.GetVersion(ctx, s.documentID, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("version %s: %w", versionID, common.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateViewingHistory {
		s.prevState = s.state
	}
	s.state = StateViewingHistory
	s.viewing = v
	return v, nil
}

// ExitHistory returns to the state held before the history view.
func (s *Session) ExitHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateViewingHistory {
		return ErrNotViewing
	}
	s.state, s.viewing = s.prevState, nil
	return nil
}

// RestoreViewed copies the displayed version into the buffer.
func (s *Session) RestoreViewed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateViewingHistory {
		return ErrNotViewing
	}
	body := s.viewing.Body
	s.state, s.viewing = s.prevState, nil
	s.setBufferLocked(body)
	return nil
}

// Close writes any pending autosave. The session must not be used after.
func (s *Session) Close() {
	s.Flush()
	s.debouncer.Cancel(s.documentID)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Viewing returns the version displayed in the history view, or nil.
func (s *Session) Viewing() *models.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewing
}

// BaseVersionID is the manual version the buffer was forked from.
func (s *Session) BaseVersionID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseID
}

func (s *Session) DocumentID() string {
	return s.documentID
}

// Dirty reports whether the buffer holds edits storage does not have.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer != s.persisted
}
