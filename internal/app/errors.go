package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrBusy        = errors.New("service busy")
	ErrInvalidMode = errors.New("invalid leaderboard mode")
)
