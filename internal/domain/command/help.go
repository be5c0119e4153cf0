package command

import "strings"

const helpTemplate = `
*Hi, I'm Wordle Buddy!*

**Commands**

Every command starts with '{prefix}' followed by words separated by spaces, e.g.:
  {prefix} help
  {prefix} leaderboard 7

> help
Sends you this message directly.

> leaderboard [week|month|N]
Posts a total score leaderboard in the channel. 'week' (default) counts from the start of the week, 'month' from the start of the month and a number N counts the last N days. Today is never included. A missed day counts as 7.

> average [week|month|all|N]
Posts a leaderboard ranked by average score. Missed days are skipped. 'all' (default) covers every day since the first puzzle.

> scrape
Re-reads recent channel history and saves any results I missed.

**Results**

Paste your result straight from Wordle, light or dark mode. Results must be posted on the day of the puzzle or they are rejected. When I save a result I react with ✅.
`

// HelpText returns the help message for a given command prefix.
func HelpText(prefix string) string {
	return strings.ReplaceAll(helpTemplate, "{prefix}", prefix)
}
