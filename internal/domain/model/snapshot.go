package model

// EntityType distinguishes player rows from team rows in the snapshot stream.
type EntityType string

// Snapshot entity types.
const (
	EntityPlayer EntityType = "player"
	EntityTeam   EntityType = "team"
)

// BaselineOrdinal is the ordinal at which every accumulator starts at zero,
// before the first real event.
const BaselineOrdinal = -1

// StatLine holds the cumulative box-score counters for one entity.
// Every field is non-decreasing across ordinals.
type StatLine struct {
	Points    int `json:"points"`
	Rebounds  int `json:"rebounds"`
	Assists   int `json:"assists"`
	Steals    int `json:"steals"`
	Blocks    int `json:"blocks"`
	Turnovers int `json:"turnovers"`
	Fouls     int `json:"fouls"`
	FGM       int `json:"fgm"`
	FGA       int `json:"fga"`
	TPM       int `json:"tpm"`
	TPA       int `json:"tpa"`
	FTM       int `json:"ftm"`
	FTA       int `json:"fta"`
}

// Snapshot is one sparse, append-only row of entity state. A row exists only
// at ordinals where the entity's state changed; the value "as of ordinal N" is
// the last row at or before N.
type Snapshot struct {
	GameID       string     `json:"game_id"`
	EntityType   EntityType `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	EventOrdinal int        `json:"event_ordinal"`
	Stats        StatLine   `json:"stats"`
	ScoreDiff    int        `json:"score_diff"` // from this entity's perspective
	IsLeading    bool       `json:"is_leading"`

	// PlusMinus is only meaningful for player rows and only while
	// PlusMinusKnown is true. It is intentionally not monotonic, and is never
	// defaulted to zero when the lineup was unknown during a scoring event.
	PlusMinus      int  `json:"plus_minus"`
	PlusMinusKnown bool `json:"plus_minus_known"`
}

// LineupInterval records one player's continuous on-court stretch.
// ExitOrdinal of -1 marks an interval still open at end of data.
type LineupInterval struct {
	GameID       string `json:"game_id"`
	TeamID       string `json:"team_id"`
	PlayerID     string `json:"player_id"`
	EnterOrdinal int    `json:"enter_ordinal"`
	ExitOrdinal  int    `json:"exit_ordinal"`
}

// Open reports whether the interval has not been closed yet.
func (iv LineupInterval) Open() bool { return iv.ExitOrdinal < 0 }

// ShotType classifies the attempt value of a shot.
type ShotType string

// Shot types, derived from descriptive text, never from distance.
const (
	ShotTwoPoint   ShotType = "2PT"
	ShotThreePoint ShotType = "3PT"
	ShotFreeThrow  ShotType = "FT"
)

// ShotZone is the court-region classification of a shot location.
type ShotZone string

// Shot zones over the normalized half-court frame.
const (
	ZonePaint           ShotZone = "paint"
	ZoneShortMid        ShotZone = "short_mid"
	ZoneLongMid         ShotZone = "long_mid"
	ZoneDeepTwo         ShotZone = "deep_two"
	ZoneCornerThree     ShotZone = "corner_three"
	ZoneAboveBreakThree ShotZone = "above_break_three"
)

// ShotEvent is a spatially classified shot joined to the snapshot timeline by
// its event ordinal.
type ShotEvent struct {
	GameID       string   `json:"game_id"`
	EventOrdinal int      `json:"event_ordinal"`
	PlayerID     string   `json:"player_id"`
	TeamID       string   `json:"team_id"`
	X            float64  `json:"x"` // normalized half-court frame
	Y            float64  `json:"y"`
	Type         ShotType `json:"shot_type"`
	Zone         ShotZone `json:"zone"`
	Made         bool     `json:"made"`
}

// GameResult is the complete output of reducing one game's event stream.
// It is assembled fully in memory and persisted in one idempotent write;
// a game that fails mid-reduction persists nothing.
type GameResult struct {
	GameID    string           `json:"game_id"`
	HomeTeam  string           `json:"home_team"`
	AwayTeam  string           `json:"away_team"`
	Events    []CanonicalEvent `json:"events"`
	Snapshots []Snapshot       `json:"snapshots"` // sparse, ordinal-ordered
	Shots     []ShotEvent      `json:"shots"`
	Lineups   []LineupInterval `json:"lineups"`
	Quality   *QualityReport   `json:"quality"`

	// Entities is the zero-stat baseline row for every entity the reduction
	// tracked, roster players without a single stat included. Temporal queries
	// before an entity's first row resolve against this universe.
	Entities []Snapshot `json:"entities,omitempty"`
}
