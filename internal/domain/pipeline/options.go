package pipeline

import (
	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/pkg/logger"
)

// Option applies a configuration option to a Pipeline.
type Option func(*Pipeline)

// WithCalendar sets the calendar submissions are judged against.
func WithCalendar(cal period.Calendar) Option {
	return func(p *Pipeline) {
		p.calendar = cal
	}
}

// WithLogger sets the logger rejection reasons are written to.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
