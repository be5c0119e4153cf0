// Package command turns chat commands into replies.
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/leaderboard"
	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/internal/domain/result"
	"github.com/okian/wordle-buddy/pkg/logger"
	"github.com/okian/wordle-buddy/pkg/metrics"
)

// Subcommands.
const (
	Help        = "help"
	Leaderboard = "leaderboard"
	Average     = "average"
	Scrape      = "scrape"
)

// Window tokens.
const (
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowAll   = "all"
)

// MaxWindowDays bounds a numeric window.
const MaxWindowDays = 3660

// Kind says where a Response goes.
type Kind int

const (
	// KindNone means there is nothing to send.
	KindNone Kind = iota
	// KindPrivate is sent to the author directly.
	KindPrivate
	// KindChannel is posted in the channel the command came from.
	KindChannel
	// KindScrape asks the caller to replay channel history.
	KindScrape
)

func (k Kind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindChannel:
		return "channel"
	case KindScrape:
		return "scrape"
	default:
		return "none"
	}
}

// Response is the outcome of a command.
type Response struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
}

// MarshalText lets Kind appear as a word in JSON.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Store is what the dispatcher reads results and names from.
type Store interface {
	Load(ctx context.Context, group string, users []string, periods []int) ([]result.UserResults, error)
	MemberName(ctx context.Context, group, user string) (string, error)
}

// Dispatcher routes prefixed messages to their handlers.
type Dispatcher struct {
	store     Store
	prefix    string
	calendar  period.Calendar
	now       func() time.Time
	formatter *leaderboard.Formatter
	logger    logger.Logger
}

// New returns a Dispatcher reading from store.
func New(store Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		prefix:   DefaultPrefix,
		calendar: period.MustNew(period.DefaultEpoch, nil),
		now:      time.Now,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.formatter == nil {
		d.formatter = leaderboard.NewFormatter(
			leaderboard.WithLocation(d.calendar.Location()),
			leaderboard.WithClock(d.now),
		)
	}
	return d
}

// IsCommand reports whether text starts with the prefix token.
func (d *Dispatcher) IsCommand(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && fields[0] == d.prefix
}

// Dispatch runs the command in text for group. Text that is not a command
// yields KindNone and a nil error. A malformed command yields KindNone and
// an error wrapping ErrCommandSyntax; the caller should not reply to it.
func (d *Dispatcher) Dispatch(ctx context.Context, group, text string) (Response, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] != d.prefix {
		return Response{Kind: KindNone}, nil
	}
	if len(fields) < 2 {
		return Response{Kind: KindNone}, fmt.Errorf("%w: missing subcommand", ErrCommandSyntax)
	}

	sub, args := fields[1], fields[2:]
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	switch sub {
	case Help:
		metrics.RecordCommand(Help)
		return Response{Kind: KindPrivate, Text: HelpText(d.prefix)}, nil
	case Scrape:
		metrics.RecordCommand(Scrape)
		return Response{Kind: KindScrape}, nil
	case Leaderboard:
		return d.totals(ctx, group, arg)
	case Average:
		return d.averages(ctx, group, arg)
	default:
		return Response{Kind: KindNone}, fmt.Errorf("%w: unknown subcommand %q", ErrCommandSyntax, sub)
	}
}

// windowDays resolves a window token to a number of days ending yesterday.
func (d *Dispatcher) windowDays(token string, allowAll bool) (int, error) {
	now := d.now()
	switch token {
	case WindowWeek:
		return d.calendar.WeekDays(now), nil
	case WindowMonth:
		return d.calendar.MonthDays(now), nil
	case WindowAll:
		if allowAll {
			return d.calendar.Index(now), nil
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil || n <= 0 || n > MaxWindowDays {
		return 0, fmt.Errorf("%w: window %q", ErrCommandSyntax, token)
	}
	return n, nil
}

// resolver looks names up in the group's member directory.
func (d *Dispatcher) resolver(group string) leaderboard.NameResolver {
	return leaderboard.ResolverFunc(func(ctx context.Context, user string) (string, bool) {
		name, err := d.store.MemberName(ctx, group, user)
		if err != nil {
			d.logger.Debug(ctx, "member not resolved",
				logger.String("group", group),
				logger.String("user", user),
				logger.Error(err))
			return "", false
		}
		return name, true
	})
}

func (d *Dispatcher) load(ctx context.Context, group string, days int) ([]result.UserResults, error) {
	results, err := d.store.Load(ctx, group, nil, d.calendar.Range(d.now(), days))
	if err != nil {
		metrics.RecordStoreError("load")
		return nil, fmt.Errorf("load %s over %d days: %w", group, days, err)
	}
	return results, nil
}

func (d *Dispatcher) totals(ctx context.Context, group, window string) (Response, error) {
	if window == "" {
		window = WindowWeek
	}
	days, err := d.windowDays(window, false)
	if err != nil {
		return Response{Kind: KindNone}, err
	}
	metrics.RecordCommand(Leaderboard)

	results, err := d.load(ctx, group, days)
	if err != nil {
		return Response{Kind: KindNone}, err
	}
	entries := leaderboard.Totals(ctx, results, d.resolver(group))
	metrics.ObserveLeaderboardRows(len(entries))
	return Response{Kind: KindChannel, Text: d.formatter.FormatTotals(days, entries)}, nil
}

func (d *Dispatcher) averages(ctx context.Context, group, window string) (Response, error) {
	if window == "" {
		window = WindowAll
	}
	days, err := d.windowDays(window, true)
	if err != nil {
		return Response{Kind: KindNone}, err
	}
	metrics.RecordCommand(Average)

	results, err := d.load(ctx, group, days)
	if err != nil {
		return Response{Kind: KindNone}, err
	}
	entries := leaderboard.Averages(ctx, results, d.resolver(group))
	metrics.ObserveLeaderboardRows(len(entries))
	return Response{Kind: KindChannel, Text: d.formatter.FormatAverages(days, entries)}, nil
}

// Totals renders the total leaderboard for a window token without going
// through command text. An empty window means the current week.
func (d *Dispatcher) Totals(ctx context.Context, group, window string) (string, error) {
	resp, err := d.totals(ctx, group, window)
	return resp.Text, err
}

// Averages renders the average leaderboard for a window token. An empty
// window means every day since the epoch.
func (d *Dispatcher) Averages(ctx context.Context, group, window string) (string, error) {
	resp, err := d.averages(ctx, group, window)
	return resp.Text, err
}
