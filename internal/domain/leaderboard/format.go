package leaderboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Layout constants. The tables are posted verbatim, so changing any of
// these changes what users see.
const (
	fence       = "```"
	dateLayout  = "02/01/2006"
	ruleWidth   = 43
	posWidth    = 4
	nameWidth   = 15
	maxNameCell = nameWidth - 1

	totalTitle   = "Wordle Leaderboard:"
	averageTitle = "Wordle Average Leaderboard:"
	totalHeader  = "POS NAME           SCORE"
	avgHeader    = "POS NAME           SCORE  TOTAL GAMES"
)

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)

	// Fixed condition so column widths do not depend on the host locale.
	cells = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}
)

// Formatter renders rankings as fenced fixed-width tables.
type Formatter struct {
	loc *time.Location
	now func() time.Time
}

// NewFormatter returns a Formatter using the local clock unless overridden.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// window returns the first and last day covered by a days-long window that
// ends yesterday.
func (f *Formatter) window(days int) (time.Time, time.Time) {
	today := f.now().In(f.loc)
	return today.AddDate(0, 0, -days), today.AddDate(0, 0, -1)
}

func (f *Formatter) head(b *strings.Builder, title, header string, days int) {
	start, end := f.window(days)
	fmt.Fprintf(b, "%s%s %s - %s\n%s\n%s\n%s",
		fence, title, start.Format(dateLayout), end.Format(dateLayout),
		heavyRule, header, lightRule)
}

// nameCell truncates name so at least one blank separates it from the
// score column, then pads it to the column width.
func nameCell(name string) string {
	return cells.FillRight(cells.Truncate(name, maxNameCell, ""), nameWidth)
}

// FormatTotals renders a total-score ranking for a window of days.
// Entries are printed in the order given.
func (f *Formatter) FormatTotals(days int, entries []TotalEntry) string {
	var b strings.Builder
	f.head(&b, totalTitle, totalHeader, days)
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%-*d%s%d", posWidth, i+1, nameCell(e.Name), e.Total)
	}
	b.WriteString(fence)
	return b.String()
}

// FormatAverages renders an average-score ranking for a window of days.
func (f *Formatter) FormatAverages(days int, entries []AverageEntry) string {
	var b strings.Builder
	f.head(&b, averageTitle, avgHeader, days)
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%-*d%s%-7.3f%d", posWidth, i+1, nameCell(e.Name), e.Mean, e.Count)
	}
	b.WriteString(fence)
	return b.String()
}

// Table is a rendered leaderboard read back from its text.
type Table struct {
	Average bool
	Start   time.Time
	End     time.Time
	Rows    []TableRow
}

// TableRow is one ranking line. Total is set for total tables; Mean and
// Count for average tables.
type TableRow struct {
	Position int
	Name     string
	Total    int
	Mean     float64
	Count    int
}

// ParseTable reads a table produced by FormatTotals or FormatAverages.
func ParseTable(text string) (Table, error) {
	if !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) || len(text) < 2*len(fence) {
		return Table{}, fmt.Errorf("%w: missing fence", ErrTableLayout)
	}
	lines := strings.Split(text[len(fence):len(text)-len(fence)], "\n")
	if len(lines) < 4 {
		return Table{}, fmt.Errorf("%w: %d lines", ErrTableLayout, len(lines))
	}

	var t Table
	title, header := lines[0], totalHeader
	switch {
	case strings.HasPrefix(title, averageTitle):
		t.Average, header = true, avgHeader
		title = strings.TrimPrefix(title, averageTitle)
	case strings.HasPrefix(title, totalTitle):
		title = strings.TrimPrefix(title, totalTitle)
	default:
		return Table{}, fmt.Errorf("%w: title %q", ErrTableLayout, lines[0])
	}
	if lines[1] != heavyRule || lines[2] != header || lines[3] != lightRule {
		return Table{}, fmt.Errorf("%w: header block", ErrTableLayout)
	}

	start, end, ok := strings.Cut(strings.TrimSpace(title), " - ")
	if !ok {
		return Table{}, fmt.Errorf("%w: title %q", ErrTableLayout, lines[0])
	}
	var err error
	if t.Start, err = time.Parse(dateLayout, start); err != nil {
		return Table{}, fmt.Errorf("%w: start date: %v", ErrTableLayout, err)
	}
	if t.End, err = time.Parse(dateLayout, end); err != nil {
		return Table{}, fmt.Errorf("%w: end date: %v", ErrTableLayout, err)
	}

	t.Rows = make([]TableRow, 0, len(lines)-4)
	for _, line := range lines[4:] {
		row, err := parseRow(line, t.Average)
		if err != nil {
			return Table{}, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func parseRow(line string, average bool) (TableRow, error) {
	if len(line) <= posWidth {
		return TableRow{}, fmt.Errorf("%w: short row %q", ErrTableLayout, line)
	}
	var (
		row TableRow
		err error
	)
	if row.Position, err = strconv.Atoi(strings.TrimSpace(line[:posWidth])); err != nil {
		return TableRow{}, fmt.Errorf("%w: position in %q", ErrTableLayout, line)
	}

	rest := line[posWidth:]
	name := cells.Truncate(rest, nameWidth, "")
	row.Name = strings.TrimRight(name, " ")
	fields := strings.Fields(rest[len(name):])

	switch {
	case !average && len(fields) == 1:
		row.Total, err = strconv.Atoi(fields[0])
	case average && len(fields) == 2:
		if row.Mean, err = strconv.ParseFloat(fields[0], 64); err == nil {
			row.Count, err = strconv.Atoi(fields[1])
		}
	default:
		return TableRow{}, fmt.Errorf("%w: score columns in %q", ErrTableLayout, line)
	}
	if err != nil {
		return TableRow{}, fmt.Errorf("%w: %q: %v", ErrTableLayout, line, err)
	}
	return row, nil
}
