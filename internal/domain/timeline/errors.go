package timeline

import "errors"

// Sentinel kinds for temporal query errors.
var (
	// ErrIncompleteGame means a named instant lies beyond the recorded data.
	// It is always signaled, never guessed around.
	ErrIncompleteGame = errors.New("incomplete game")
	// ErrBadInstant means the instant itself is malformed.
	ErrBadInstant = errors.New("invalid instant")
)
