package leaderboard

import "errors"

// ErrTableLayout is returned by ParseTable for text that is not a rendered
// leaderboard.
var ErrTableLayout = errors.New("leaderboard table layout")
