package repository

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrNotFound = errors.New("game not found")
	ErrClosed   = errors.New("sink closed")
)
