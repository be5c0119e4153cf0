package repository

import (
	"time"

	"github.com/okian/wordle-buddy/internal/domain/period"
)

type options struct {
	calendar  period.Calendar
	now       func() time.Time
	keepEmpty bool
}

func defaultOptions() *options {
	return &options{
		calendar: period.MustNew(period.DefaultEpoch, nil),
		now:      time.Now,
	}
}

// Option applies a configuration option to a Store.
type Option func(*options)

// WithCalendar sets the calendar used to resolve the default period.
func WithCalendar(cal period.Calendar) Option {
	return func(o *options) {
		o.calendar = cal
	}
}

// WithClock overrides the wall clock used for the default period.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithKeepEmpty keeps users whose every requested period is absent.
func WithKeepEmpty(keep bool) Option {
	return func(o *options) {
		o.keepEmpty = keep
	}
}
