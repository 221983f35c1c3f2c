package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	// ErrFatalStream marks an unresolvable ordinal collision. It aborts the
	// affected game only; other games in a batch are unaffected.
	ErrFatalStream = errors.New("fatal stream error")
)
