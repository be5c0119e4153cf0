package result

import (
	"fmt"
	"strings"
)

// HeaderLines is the number of leading lines before the first tile row:
// the header itself and the blank separator.
const HeaderLines = 2

// Record is one accepted submission. The JSON names match the files the bot
// has always written.
type Record struct {
	Period   int   `json:"week_number"`
	Score    Score `json:"score"`
	Rows     []Row `json:"matrix"`
	HardMode bool  `json:"hard_mode,omitempty"`
}

// UserResults is one user's records over a run of periods, aligned index
// by index with the requested periods. A nil entry means no submission.
type UserResults struct {
	UserID  string
	Results []*Record
}

// Parse turns a pasted result message into a candidate Record. The record
// is not checked against the calendar; see Validator.
func Parse(text string) (Record, error) {
	lines := strings.Split(text, "\n")
	if len(lines) <= HeaderLines {
		return Record{}, fmt.Errorf("%w: %d lines", ErrMissingBody, len(lines))
	}

	h, err := ParseHeader(lines[0])
	if err != nil {
		return Record{}, err
	}

	rows := make([]Row, 0, PuzzleSize)
	for _, line := range lines[HeaderLines:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row, err := DecodeRow(line)
		if err != nil {
			return Record{}, err
		}
		rows = append(rows, row)
	}

	return Record{
		Period:   h.Period,
		Score:    h.Score,
		Rows:     rows,
		HardMode: h.HardMode,
	}, nil
}
