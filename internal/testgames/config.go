package testgames

// Default generation parameters, tuned to produce a plausible regulation game.
const (
	defaultGames            = 4
	defaultPeriods          = 4
	defaultPeriodSeconds    = 720
	defaultPossessions      = 24 // per period
	defaultRosterSize       = 9  // per team, five starters plus bench
	defaultSubsPerPeriod    = 2  // per team
	defaultThreeRate        = 0.35
	defaultMakeRate         = 0.46
	defaultTurnoverRate     = 0.12
	defaultFoulRate         = 0.10
	defaultCornerRate       = 0.30
	defaultOffensiveRebRate = 0.25
)

// Config holds configuration for the synthetic game generator.
type Config struct {
	Games         int     // number of games to generate
	Periods       int     // regulation periods per game
	PeriodSeconds int     // game clock length per period
	Possessions   int     // possessions per period, per both teams combined
	RosterSize    int     // players per team
	SubsPerPeriod int     // substitutions per team per period
	Seed          int64   // non-zero for fully reproducible output
	WithStarters  bool    // attach explicit starter lists to the jobs
	WithRoster    bool    // attach the full roster to the jobs
	Shuffle       bool    // emit raw events out of order to exercise sorting
	ThreeRate     float64 // share of field goal attempts from three
	MakeRate      float64 // field goal make probability
	TurnoverRate  float64 // possessions ending in a turnover
	FoulRate      float64 // possessions ending in free throws
}

// DefaultConfig returns a generation config for full regulation games.
func DefaultConfig() Config {
	return Config{
		Games:         defaultGames,
		Periods:       defaultPeriods,
		PeriodSeconds: defaultPeriodSeconds,
		Possessions:   defaultPossessions,
		RosterSize:    defaultRosterSize,
		SubsPerPeriod: defaultSubsPerPeriod,
		WithStarters:  true,
		WithRoster:    true,
		ThreeRate:     defaultThreeRate,
		MakeRate:      defaultMakeRate,
		TurnoverRate:  defaultTurnoverRate,
		FoulRate:      defaultFoulRate,
	}
}
