package model

import "fmt"

// WarningKind tags a data-quality warning with its taxonomy entry.
type WarningKind string

// Warning kinds accumulated while reducing a game.
const (
	WarnMalformedEvent      WarningKind = "malformed_event"
	WarnUnknownPlayer       WarningKind = "unknown_player_reference"
	WarnInvalidSubstitution WarningKind = "invalid_substitution"
	WarnLineupInferred      WarningKind = "lineup_inferred"
	WarnLineupUnknown       WarningKind = "lineup_unknown"
)

// Warning is one non-fatal data-quality finding, anchored to the ordinal where
// it was detected (BaselineOrdinal when it predates the stream).
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Ordinal int         `json:"ordinal"`
	Message string      `json:"message"`
}

// QualityReport accumulates every warning raised while reducing one game so
// completeness can be judged without re-scanning raw data. It is not safe for
// concurrent use; each game owns its report.
type QualityReport struct {
	GameID   string              `json:"game_id"`
	Warnings []Warning           `json:"warnings"`
	Counts   map[WarningKind]int `json:"counts"`
}

// NewQualityReport creates an empty report for one game.
func NewQualityReport(gameID string) *QualityReport {
	return &QualityReport{
		GameID: gameID,
		Counts: make(map[WarningKind]int),
	}
}

// Warnf records one warning.
func (q *QualityReport) Warnf(kind WarningKind, ordinal int, format string, args ...any) {
	q.Warnings = append(q.Warnings, Warning{
		Kind:    kind,
		Ordinal: ordinal,
		Message: fmt.Sprintf(format, args...),
	})
	q.Counts[kind]++
}

// Count returns how many warnings of the given kind were recorded.
func (q *QualityReport) Count(kind WarningKind) int { return q.Counts[kind] }

// Clean reports whether the game reduced with no warnings at all.
func (q *QualityReport) Clean() bool { return len(q.Warnings) == 0 }
