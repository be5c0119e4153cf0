package command

import (
	"time"

	"github.com/okian/wordle-buddy/internal/domain/leaderboard"
	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/pkg/logger"
)

// DefaultPrefix is the token every command starts with.
const DefaultPrefix = "+w"

// Option applies a configuration option to a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix sets the command prefix token.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithCalendar sets the calendar used to resolve windows.
func WithCalendar(cal period.Calendar) Option {
	return func(d *Dispatcher) {
		d.calendar = cal
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithFormatter replaces the table formatter.
func WithFormatter(f *leaderboard.Formatter) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.formatter = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
