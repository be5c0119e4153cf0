// Package pipeline accepts pasted results: parse, validate, then save.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/internal/domain/result"
	"github.com/okian/wordle-buddy/pkg/logger"
	"github.com/okian/wordle-buddy/pkg/metrics"
)

// Saver stores an accepted record.
type Saver interface {
	Save(ctx context.Context, group, user string, rec result.Record) error
}

// Pipeline turns message text into a stored record or a logged rejection.
type Pipeline struct {
	saver    Saver
	calendar period.Calendar
	logger   logger.Logger
}

// New returns a Pipeline writing to saver.
func New(saver Saver, opts ...Option) *Pipeline {
	p := &Pipeline{
		saver:    saver,
		calendar: period.MustNew(period.DefaultEpoch, nil),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit parses and validates text and saves the record. It writes to the
// store only when every check passes.
func (p *Pipeline) Submit(ctx context.Context, group, user, text string, arrival time.Time) (result.Record, error) {
	rec, err := result.Parse(text)
	if err != nil {
		return result.Record{}, err
	}
	if err := result.NewValidator(p.calendar).Validate(rec, arrival); err != nil {
		return result.Record{}, err
	}
	if err := p.saver.Save(ctx, group, user, rec); err != nil {
		return result.Record{}, fmt.Errorf("save result: %w", err)
	}
	return rec, nil
}

// Handle is Submit for callers that only need to know whether to
// acknowledge. Every failure is logged and counted; none is returned.
func (p *Pipeline) Handle(ctx context.Context, group, user, text string, arrival time.Time) bool {
	rec, err := p.Submit(ctx, group, user, text, arrival)
	if err == nil {
		metrics.RecordSubmissionAccepted()
		p.logger.Info(ctx, "result saved",
			logger.String("group", group),
			logger.String("user", user),
			logger.Int("period", rec.Period),
			logger.Int("score", int(rec.Score)))
		return true
	}

	reason := result.Reason(err)
	if reason == "other" {
		reason = "store"
	}
	metrics.RecordSubmissionRejected(reason)

	fields := []logger.Field{
		logger.String("group", group),
		logger.String("user", user),
		logger.String("reason", reason),
		logger.Error(err),
	}
	switch {
	case reason == "store":
		p.logger.Error(ctx, "result not saved", fields...)
	case errors.Is(err, result.ErrMissingBody), errors.Is(err, result.ErrFormat):
		// Most chat messages are not results at all.
		p.logger.Debug(ctx, "message is not a result", fields...)
	default:
		p.logger.Info(ctx, "result rejected", fields...)
	}
	return false
}
