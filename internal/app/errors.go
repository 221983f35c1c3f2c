package service

import "errors"

// General errors for the service package.
var (
	// ErrUnknownGame is returned by the query surface for a game id that has
	// not completed processing (or never existed).
	ErrUnknownGame = errors.New("unknown game")

	// ErrNotStarted is returned when a query or enqueue reaches a service
	// whose Start was never called.
	ErrNotStarted = errors.New("service not started")
)
