// Package result parses and validates pasted Wordle result messages.
package result

import (
	"fmt"
)

// Outcome is the comparison result for one letter of one guess.
type Outcome int

// Outcome values. The numeric values are part of the stored record format.
const (
	Absent  Outcome = 0
	Partial Outcome = 1
	Exact   Outcome = 2
)

// Result tiles as they appear in a shared result. White and black are the
// light and dark theme variants of a miss.
const (
	WhiteSquare  = '\u2B1C'
	BlackSquare  = '\u2B1B'
	YellowSquare = '\U0001F7E8'
	GreenSquare  = '\U0001F7E9'
)

// RowWidth is the number of tiles per guess.
const RowWidth = 5

var glyphs = map[rune]Outcome{
	WhiteSquare:  Absent,
	BlackSquare:  Absent,
	YellowSquare: Partial,
	GreenSquare:  Exact,
}

// DecodeGlyph maps a result tile to its outcome.
func DecodeGlyph(r rune) (Outcome, error) {
	o, ok := glyphs[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrGlyph, r)
	}
	return o, nil
}

// Row is the outcome of one guess, one entry per letter position.
type Row []Outcome

// IsWin reports whether every position of the row is Exact.
func (r Row) IsWin() bool {
	if len(r) != RowWidth {
		return false
	}
	for _, o := range r {
		if o != Exact {
			return false
		}
	}
	return true
}

// DecodeRow decodes a trimmed body line into a Row.
// Unknown characters are reported before the width is checked.
func DecodeRow(line string) (Row, error) {
	row := make(Row, 0, RowWidth)
	for _, r := range line {
		o, err := DecodeGlyph(r)
		if err != nil {
			return nil, err
		}
		row = append(row, o)
	}
	if len(row) != RowWidth {
		return nil, fmt.Errorf("%w: got %d tiles, want %d", ErrRowLength, len(row), RowWidth)
	}
	return row, nil
}
