package result

import (
	"fmt"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/period"
)

// Validator checks a parsed Record against the puzzle calendar and the
// internal consistency of its score and rows.
type Validator struct {
	calendar period.Calendar
}

// NewValidator returns a Validator for cal.
func NewValidator(cal period.Calendar) *Validator {
	return &Validator{calendar: cal}
}

// Validate returns nil when rec may be stored. arrival is the universal
// timestamp of the message; it is judged in the calendar's civil time.
func (v *Validator) Validate(rec Record, arrival time.Time) error {
	if want := v.calendar.Index(arrival); rec.Period != want {
		return fmt.Errorf("%w: submitted puzzle %d on the day of puzzle %d", ErrSchedule, rec.Period, want)
	}
	if len(rec.Rows) == 0 || len(rec.Rows) > PuzzleSize {
		return fmt.Errorf("%w: %d rows", ErrConsistency, len(rec.Rows))
	}

	last := rec.Rows[len(rec.Rows)-1]
	if rec.Score != FailureScore {
		if len(rec.Rows) != int(rec.Score) {
			return fmt.Errorf("%w: score %d but %d rows", ErrConsistency, rec.Score, len(rec.Rows))
		}
		if !last.IsWin() {
			return fmt.Errorf("%w: declared success but last row isn't a win", ErrConsistency)
		}
		return nil
	}
	if last.IsWin() {
		return fmt.Errorf("%w: declared failure but last row is a win", ErrConsistency)
	}
	return nil
}
