package stats

import "errors"

// Sentinel kinds for aggregation errors.
var (
	// ErrOrdinalOrder means an event arrived out of ordinal order, which the
	// normalizer guarantees against; it is fatal for the affected game.
	ErrOrdinalOrder = errors.New("event ordinal out of order")
)
