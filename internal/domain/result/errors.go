package result

import (
	"errors"
)

// Sentinel kinds for parse and validation failures. Callers match them with
// errors.Is; the wrapped message carries the human-readable reason.
var (
	ErrFormat      = errors.New("header format")
	ErrRowLength   = errors.New("row length")
	ErrGlyph       = errors.New("invalid glyph")
	ErrMissingBody = errors.New("missing body")
	ErrSchedule    = errors.New("wrong day")
	ErrConsistency = errors.New("inconsistent result")
)

// Reason returns a short, stable label for err suitable for metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrRowLength):
		return "row_length"
	case errors.Is(err, ErrGlyph):
		return "glyph"
	case errors.Is(err, ErrMissingBody):
		return "missing_body"
	case errors.Is(err, ErrSchedule):
		return "schedule"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	default:
		return "other"
	}
}
