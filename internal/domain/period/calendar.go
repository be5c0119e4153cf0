// Package period maps wall-clock instants onto puzzle day indexes.
//
// A period is one calendar day counted from a fixed epoch date. The epoch and
// the civil-time location are injected so callers never depend on a hidden
// package clock.
package period

import (
	"errors"
	"fmt"
	"time"
)

// DefaultEpoch is the civil date of puzzle 0.
const DefaultEpoch = "2021-06-19"

const (
	dateLayout = "2006-01-02"
	hoursInDay = 24
)

// ErrInvalidEpoch is returned when the epoch cannot be parsed.
var ErrInvalidEpoch = errors.New("invalid epoch date")

// Calendar converts instants to period indexes in a fixed location.
type Calendar struct {
	epoch time.Time // midnight UTC of the epoch civil date
	loc   *time.Location
}

// New builds a Calendar from an epoch date (YYYY-MM-DD) and a location.
// A nil location means time.Local.
func New(epoch string, loc *time.Location) (Calendar, error) {
	t, err := time.Parse(dateLayout, epoch)
	if err != nil {
		return Calendar{}, fmt.Errorf("%w: %q: %v", ErrInvalidEpoch, epoch, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return Calendar{epoch: t, loc: loc}, nil
}

// MustNew is New for fixed, known-good inputs.
func MustNew(epoch string, loc *time.Location) Calendar {
	c, err := New(epoch, loc)
	if err != nil {
		panic(err)
	}
	return c
}

// Location returns the civil-time location of the calendar.
func (c Calendar) Location() *time.Location { return c.loc }

// civilDate drops the clock of t after moving it into the calendar location.
func (c Calendar) civilDate(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Index returns the period of the civil day containing t.
func (c Calendar) Index(t time.Time) int {
	return int(c.civilDate(t).Sub(c.epoch).Hours() / hoursInDay)
}

// Date returns the civil date (midnight, calendar location) of period p.
func (c Calendar) Date(p int) time.Time {
	d := c.epoch.AddDate(0, 0, p)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
}

// WeekDays returns the ISO weekday of now: Monday is 1, Sunday is 7.
func (c Calendar) WeekDays(now time.Time) int {
	wd := int(now.In(c.loc).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MonthDays returns the day of month of now.
func (c Calendar) MonthDays(now time.Time) int {
	return now.In(c.loc).Day()
}

// Range returns the periods of the days days before now, oldest first.
// Today is never included.
func (c Calendar) Range(now time.Time, days int) []int {
	if days <= 0 {
		return []int{}
	}
	today := c.Index(now)
	periods := make([]int, 0, days)
	for p := today - days; p < today; p++ {
		periods = append(periods, p)
	}
	return periods
}
