package result

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Score is the number of guesses used, or FailureScore.
type Score int

// Puzzle constants.
const (
	PuzzleSize   = 6
	FailureScore = Score(PuzzleSize + 1)
)

// Header is the first line of a shared result.
type Header struct {
	Period   int
	Score    Score
	HardMode bool
}

var headerRE = regexp.MustCompile(`^Wordle\s+(\d+)\s+([1-6]|X)/` + strconv.Itoa(PuzzleSize) + `(\*)?$`)

// ParseHeader parses a line such as "Wordle 321 3/6" or "Wordle 321 X/6*".
func ParseHeader(line string) (Header, error) {
	m := headerRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Header{}, fmt.Errorf("%w: %q", ErrFormat, line)
	}
	p, err := strconv.Atoi(m[1])
	if err != nil {
		return Header{}, fmt.Errorf("%w: period %q: %v", ErrFormat, m[1], err)
	}
	h := Header{Period: p, Score: FailureScore, HardMode: m[3] != ""}
	if m[2] != "X" {
		h.Score = Score(m[2][0] - '0')
	}
	return h, nil
}
