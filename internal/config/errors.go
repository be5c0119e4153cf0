package config

import (
	"errors"
)

var (
	// ErrInvalidConfig marks a configuration that loaded but cannot run.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, env or decode failure.
	ErrLoadConfig = errors.New("load config failed")
)
