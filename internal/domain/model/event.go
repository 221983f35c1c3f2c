// Package model contains domain models passed between layers.
package model

// EventKind enumerates the canonical play-by-play event kinds.
type EventKind string

// Canonical event kinds. Provider-specific type strings are mapped onto these
// during normalization; anything unrecognized becomes KindOther but keeps its
// place in the timeline.
const (
	KindScore          EventKind = "SCORE"
	KindRebound        EventKind = "REBOUND"
	KindAssist         EventKind = "ASSIST"
	KindSteal          EventKind = "STEAL"
	KindBlock          EventKind = "BLOCK"
	KindTurnover       EventKind = "TURNOVER"
	KindFoul           EventKind = "FOUL"
	KindSubstitution   EventKind = "SUBSTITUTION"
	KindTimeout        EventKind = "TIMEOUT"
	KindJumpBall       EventKind = "JUMP_BALL"
	KindPeriodBoundary EventKind = "PERIOD_BOUNDARY" // asserts its period ended here
	KindShotMade       EventKind = "SHOT_MADE"
	KindShotMissed     EventKind = "SHOT_MISSED"
	KindFreeThrow      EventKind = "FREE_THROW"
	KindOther          EventKind = "OTHER"
)

// Score is the running game score after an event.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Diff returns home minus away.
func (s Score) Diff() int { return s.Home - s.Away }

// ShotDetail carries the spatial payload of a shooting event.
type ShotDetail struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	TypeText string  `json:"type_text"` // provider description, e.g. "3PT Jump Shot"
	Made     bool    `json:"made"`
	Points   int     `json:"points"` // 1, 2 or 3
}

// RawEvent is the provider-shaped input consumed by the normalizer.
// Ingestion adapters produce these; the engine never sees anything rawer.
type RawEvent struct {
	GameID            string      `json:"game_id"`
	ProviderID        string      `json:"provider_id"` // provider-native event id, ordering tiebreak
	Period            int         `json:"period"`
	Clock             string      `json:"clock"` // display clock, e.g. "11:24" or "0:34.5"
	TypeText          string      `json:"type_text"`
	TeamID            string      `json:"team_id"`
	PlayerID          string      `json:"player_id"`
	SecondaryPlayerID string      `json:"secondary_player_id,omitempty"`
	HomeScore         int         `json:"home_score"`
	AwayScore         int         `json:"away_score"`
	Description       string      `json:"description"`
	Shot              *ShotDetail `json:"shot,omitempty"`
}

// CanonicalEvent is one normalized, ordered play-by-play event.
// Immutable once produced by the normalizer.
type CanonicalEvent struct {
	GameID            string      `json:"game_id"`
	EventOrdinal      int         `json:"event_ordinal"` // dense, strictly increasing per game
	Period            int         `json:"period"`
	ClockRemaining    float64     `json:"clock_remaining_seconds"`
	Kind              EventKind   `json:"event_kind"`
	TeamID            string      `json:"team_id"`
	PrimaryPlayerID   string      `json:"primary_player_id"`
	SecondaryPlayerID string      `json:"secondary_player_id,omitempty"`
	ScoreAfter        Score       `json:"score_after"`
	RawText           string      `json:"raw_text"`
	Shot              *ShotDetail `json:"shot,omitempty"`
}

// IsScoring reports whether the event moved the scoreboard. Missed shots and
// missed free throws carry a Shot payload but score nothing.
func (e *CanonicalEvent) IsScoring() bool {
	switch e.Kind {
	case KindScore, KindShotMade, KindFreeThrow:
		return e.Shot == nil || e.Shot.Made
	default:
		return false
	}
}

// IsShot reports whether the event carries a classifiable shot attempt.
func (e *CanonicalEvent) IsShot() bool {
	return e.Shot != nil
}
