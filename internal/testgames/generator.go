// Package testgames generates synthetic play-by-play games: full regulation
// event logs with consistent scoreboards, rosters and substitution patterns.
// Output is reproducible for a fixed seed, which makes it usable both as CLI
// fixture data (cmd/gamegen) and inside deterministic tests and benchmarks.
package testgames

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// teamCodes is the pool of team identifiers games draw from.
var teamCodes = []string{
	"ATL", "BOS", "BKN", "CHA", "CHI", "CLE", "DAL", "DEN",
	"DET", "GSW", "HOU", "IND", "LAC", "LAL", "MEM", "MIA",
}

// Generator produces synthetic game jobs from a single random source.
// Not safe for concurrent use.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator. A zero seed produces a different batch every run;
// any other seed is fully reproducible.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Generate produces the configured number of game jobs.
func (g *Generator) Generate() []model.GameJob {
	jobs := make([]model.GameJob, 0, g.cfg.Games)
	for i := 0; i < g.cfg.Games; i++ {
		jobs = append(jobs, g.game(i))
	}
	return jobs
}

// gameState is the mutable state of one simulated game.
type gameState struct {
	job     *model.GameJob
	home    string
	away    string
	onCourt map[string][]string // team -> five on court
	bench   map[string][]string
	score   model.Score
	seq     int
	period  int
	clock   int // seconds remaining in the period
}

// game simulates one full game.
func (g *Generator) game(n int) model.GameJob {
	gameID := fmt.Sprintf("game-%03d", n+1)
	if g.cfg.Seed == 0 {
		gameID = uuid.NewString()
	}

	hi := g.rng.Intn(len(teamCodes))
	ai := g.rng.Intn(len(teamCodes) - 1)
	if ai >= hi {
		ai++
	}
	home, away := teamCodes[hi], teamCodes[ai]

	job := model.GameJob{
		GameID:   gameID,
		HomeTeam: home,
		AwayTeam: away,
	}
	st := &gameState{
		job:     &job,
		home:    home,
		away:    away,
		onCourt: make(map[string][]string),
		bench:   make(map[string][]string),
	}
	roster := make(map[string][]string, 2)
	for _, team := range []string{home, away} {
		players := make([]string, g.cfg.RosterSize)
		for i := range players {
			players[i] = fmt.Sprintf("%s-%02d", team, i+1)
		}
		roster[team] = players
		st.onCourt[team] = append([]string{}, players[:5]...)
		st.bench[team] = append([]string{}, players[5:]...)
	}
	if g.cfg.WithRoster {
		job.Roster = roster
	}
	if g.cfg.WithStarters {
		job.Starters = map[string][]string{
			home: append([]string{}, st.onCourt[home]...),
			away: append([]string{}, st.onCourt[away]...),
		}
	}

	offense := home
	if g.rng.Intn(2) == 1 {
		offense = away
	}

	for p := 1; p <= g.cfg.Periods; p++ {
		st.period = p
		st.clock = g.cfg.PeriodSeconds
		if p == 1 {
			g.emit(st, model.RawEvent{
				TypeText:    "jump ball",
				TeamID:      offense,
				PlayerID:    st.onCourt[offense][0],
				Description: "jump ball won",
			})
		}
		subAt := g.subSchedule()
		for poss := 0; poss < g.cfg.Possessions; poss++ {
			if subAt[poss] {
				g.substitute(st, home)
				g.substitute(st, away)
			}
			st.clock -= 8 + g.rng.Intn(16)
			if st.clock < 1 {
				st.clock = 1
			}
			g.possession(st, offense)
			offense = other(offense, home, away)
		}
		st.clock = 0
		g.emit(st, model.RawEvent{
			TypeText:    "end of period",
			Description: fmt.Sprintf("end of period %d", p),
		})
	}

	if g.cfg.Shuffle {
		g.rng.Shuffle(len(job.Raw), func(i, j int) {
			job.Raw[i], job.Raw[j] = job.Raw[j], job.Raw[i]
		})
	}
	return job
}

// subSchedule picks the possessions before which both teams substitute.
func (g *Generator) subSchedule() map[int]bool {
	at := make(map[int]bool, g.cfg.SubsPerPeriod)
	for i := 0; i < g.cfg.SubsPerPeriod; i++ {
		// never before the first possession, so period one inference has data
		at[1+g.rng.Intn(g.cfg.Possessions-1)] = true
	}
	return at
}

// substitute swaps one random on-court player with one from the bench.
func (g *Generator) substitute(st *gameState, team string) {
	if len(st.bench[team]) == 0 {
		return
	}
	oi := g.rng.Intn(len(st.onCourt[team]))
	bi := g.rng.Intn(len(st.bench[team]))
	out := st.onCourt[team][oi]
	in := st.bench[team][bi]
	st.onCourt[team][oi] = in
	st.bench[team][bi] = out
	g.emit(st, model.RawEvent{
		TypeText:          "substitution",
		TeamID:            team,
		PlayerID:          in,
		SecondaryPlayerID: out,
		Description:       fmt.Sprintf("%s enters for %s", in, out),
	})
}

// possession plays out one offensive possession for the given team.
func (g *Generator) possession(st *gameState, offense string) {
	defense := other(offense, st.home, st.away)
	shooter := g.pick(st.onCourt[offense])

	switch r := g.rng.Float64(); {
	case r < g.cfg.TurnoverRate:
		g.emit(st, model.RawEvent{
			TypeText:    "turnover",
			TeamID:      offense,
			PlayerID:    shooter,
			Description: "lost ball turnover",
		})
		if g.rng.Float64() < 0.5 {
			g.tick(st)
			g.emit(st, model.RawEvent{
				TypeText:    "steal",
				TeamID:      defense,
				PlayerID:    g.pick(st.onCourt[defense]),
				Description: "steal",
			})
		}
	case r < g.cfg.TurnoverRate+g.cfg.FoulRate:
		g.emit(st, model.RawEvent{
			TypeText:          "foul",
			TeamID:            defense,
			PlayerID:          g.pick(st.onCourt[defense]),
			SecondaryPlayerID: shooter,
			Description:       "shooting foul",
		})
		for i := 0; i < 2; i++ {
			g.tick(st)
			g.freeThrow(st, offense, shooter)
		}
	default:
		g.fieldGoal(st, offense, defense, shooter)
	}
}

// fieldGoal simulates one shot attempt plus its trailing events.
func (g *Generator) fieldGoal(st *gameState, offense, defense, shooter string) {
	three := g.rng.Float64() < g.cfg.ThreeRate
	made := g.rng.Float64() < g.cfg.MakeRate
	points := 2
	typeText := "Jump Shot"
	if three {
		points = 3
		typeText = "3PT Jump Shot"
		made = g.rng.Float64() < g.cfg.MakeRate-0.1
	}
	x, y := g.shotSpot(three)

	shot := &model.ShotDetail{X: x, Y: y, TypeText: typeText, Made: made, Points: points}
	if made {
		g.addPoints(st, offense, points)
	}
	g.emit(st, model.RawEvent{
		TypeText:    shotText(made),
		TeamID:      offense,
		PlayerID:    shooter,
		Description: fmt.Sprintf("%s %s", shooter, shotText(made)),
		Shot:        shot,
	})

	switch {
	case made && g.rng.Float64() < 0.6:
		g.tick(st)
		g.emit(st, model.RawEvent{
			TypeText:          "assist",
			TeamID:            offense,
			PlayerID:          g.pickOther(st.onCourt[offense], shooter),
			SecondaryPlayerID: shooter,
			Description:       "assist",
		})
	case !made:
		rebTeam := defense
		if g.rng.Float64() < defaultOffensiveRebRate {
			rebTeam = offense
		}
		g.tick(st)
		g.emit(st, model.RawEvent{
			TypeText:    "rebound",
			TeamID:      rebTeam,
			PlayerID:    g.pick(st.onCourt[rebTeam]),
			Description: "rebound",
		})
	}
}

// freeThrow simulates one free throw attempt from the line.
func (g *Generator) freeThrow(st *gameState, offense, shooter string) {
	made := g.rng.Float64() < 0.78
	if made {
		g.addPoints(st, offense, 1)
	}
	g.emit(st, model.RawEvent{
		TypeText:    "free throw",
		TeamID:      offense,
		PlayerID:    shooter,
		Description: "free throw",
		Shot:        &model.ShotDetail{X: 25, Y: 19, TypeText: "Free Throw", Made: made, Points: 1},
	})
}

// shotSpot picks plausible court coordinates for an attempt.
func (g *Generator) shotSpot(three bool) (float64, float64) {
	if !three {
		return 10 + g.rng.Float64()*30, g.rng.Float64() * 18
	}
	if g.rng.Float64() < defaultCornerRate {
		x := g.rng.Float64() * 8
		if g.rng.Intn(2) == 1 {
			x = 42 + g.rng.Float64()*8
		}
		return x, g.rng.Float64() * 12
	}
	return 12 + g.rng.Float64()*26, 26 + g.rng.Float64()*6
}

// addPoints moves the scoreboard.
func (g *Generator) addPoints(st *gameState, team string, points int) {
	if team == st.home {
		st.score.Home += points
	} else {
		st.score.Away += points
	}
}

// tick advances the clock by one second so trailing events keep their order.
func (g *Generator) tick(st *gameState) {
	if st.clock > 1 {
		st.clock--
	}
}

// emit fills in the game-level fields and appends the event.
func (g *Generator) emit(st *gameState, ev model.RawEvent) {
	ev.GameID = st.job.GameID
	ev.ProviderID = fmt.Sprintf("evt-%05d", st.seq)
	ev.Period = st.period
	ev.Clock = fmt.Sprintf("%d:%02d", st.clock/60, st.clock%60)
	ev.HomeScore = st.score.Home
	ev.AwayScore = st.score.Away
	st.seq++
	st.job.Raw = append(st.job.Raw, ev)
}

func (g *Generator) pick(players []string) string {
	return players[g.rng.Intn(len(players))]
}

func (g *Generator) pickOther(players []string, not string) string {
	for {
		p := g.pick(players)
		if p != not {
			return p
		}
	}
}

func shotText(made bool) string {
	if made {
		return "made shot"
	}
	return "missed shot"
}

func other(team, home, away string) string {
	if team == home {
		return away
	}
	return home
}
