package stats

import "github.com/courtlytics/pbp/internal/domain/model"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithRoster declares the known roster per team. Accumulators are seeded at
// the zero baseline, and any later reference to a player outside these lists
// is reported as an unknown-player warning.
func WithRoster(roster map[string][]string) Option {
	return func(a *Aggregator) {
		for teamID, players := range roster {
			a.team(teamID)
			for _, pid := range players {
				a.roster[pid] = true
				a.accs[accKey{model.EntityPlayer, pid}] = &accumulator{teamID: teamID, pmKnown: true}
			}
		}
	}
}

// WithTeams pins the home and away team ids up front instead of inferring
// them from the first scoring event.
func WithTeams(home, away string) Option {
	return func(a *Aggregator) {
		if home == "" || away == "" {
			return
		}
		a.team(home)
		a.team(away)
		a.side[home] = "home"
		a.side[away] = "away"
	}
}
