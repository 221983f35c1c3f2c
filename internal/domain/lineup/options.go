package lineup

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithStarters seeds a team's lineup from an explicit starters list, opening
// the five intervals at ordinal 0. Lists that are not exactly five players
// are ignored and the team falls back to inference.
func WithStarters(teamID string, players []string) Option {
	return func(t *Tracker) {
		if len(players) != PlayersOnCourt {
			return
		}
		ts := t.team(teamID)
		for _, pid := range players {
			ts.onCourt[pid] = 0
		}
		if len(ts.onCourt) != PlayersOnCourt {
			// Duplicate ids in the list; discard and infer instead.
			ts.onCourt = make(map[string]int)
			return
		}
		ts.phase = phaseKnown
	}
}
