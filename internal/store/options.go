package store

import (
	"github.com/google/uuid"

	"github.com/dmitrijs2005/textkeeper/internal/logging"
	"github.com/dmitrijs2005/textkeeper/internal/timex"
)

// Settings are the collaborators shared by every backend.
type Settings struct {
	Now    timex.Clock
	NewID  func() string
	Logger logging.Logger
}

// Option configures a backend.
type Option func(*Settings)

// WithClock sets the time source. It is wrapped in a monotonic clock.
func WithClock(c timex.Clock) Option {
	return func(s *Settings) {
		s.Now = timex.Monotonic(c)
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Settings) {
		s.NewID = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// NewSettings resolves opts over the defaults: a monotonic system clock,
// random UUIDs and a discarding logger.
func NewSettings(opts ...Option) Settings {
	s := Settings{
		Now:    timex.Monotonic(timex.System),
		NewID:  uuid.NewString,
		Logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
