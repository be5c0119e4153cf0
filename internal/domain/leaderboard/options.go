package leaderboard

import "time"

// Option applies a configuration option to a Formatter.
type Option func(*Formatter)

// WithLocation sets the civil-time location used for the title dates.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}
