// Package stats implements the incremental aggregator: it walks the canonical
// event stream and emits a sparse, append-only snapshot row for every entity
// whose state an event changed.
//
// Sparse versioning over full materialization: one accumulator of "last known
// state" per entity plus an append-only row stream keeps each event O(1)
// amortized regardless of roster size. Resolving state as of ordinal N means
// taking, per entity, the last row at or before N (see the timeline package).
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// OnCourt is the lineup tracker's answer for one team at one event: the five
// players currently on court, or Known=false when the lineup is degraded.
type OnCourt struct {
	Players []string
	Known   bool
}

// accKey identifies one accumulator.
type accKey struct {
	typ model.EntityType
	id  string
}

// accumulator is the last known state of one entity.
type accumulator struct {
	teamID  string // owning team for players, own id for teams
	stats   model.StatLine
	pm      int
	pmKnown bool
}

// Aggregator reduces one game's canonical stream into sparse snapshot rows.
// It is not safe for concurrent use; each game owns its aggregator.
type Aggregator struct {
	gameID  string
	report  *model.QualityReport
	accs    map[accKey]*accumulator
	rows    []model.Snapshot
	cur     model.Score
	side    map[string]string // team id -> "home" | "away"
	teams   []string          // distinct team ids in first-seen order
	tainted map[string]bool   // team id -> plus/minus no longer computable
	roster  map[string]bool   // explicit roster, empty means none provided
	blind   bool              // a scoring event passed with no opposing lineup represented
	last    int               // last applied ordinal
}

// New creates an aggregator for one game, zeroed at the baseline ordinal.
func New(gameID string, report *model.QualityReport, opts ...Option) *Aggregator {
	a := &Aggregator{
		gameID:  gameID,
		report:  report,
		accs:    make(map[accKey]*accumulator),
		side:    make(map[string]string),
		tainted: make(map[string]bool),
		roster:  make(map[string]bool),
		last:    model.BaselineOrdinal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply advances the aggregator by one event. courts carries both teams'
// on-court answers for plus/minus crediting on scoring events.
func (a *Aggregator) Apply(ev *model.CanonicalEvent, courts map[string]OnCourt) error {
	if ev.EventOrdinal <= a.last {
		return fmt.Errorf("%w: ordinal %d not after %d", ErrOrdinalOrder, ev.EventOrdinal, a.last)
	}
	a.last = ev.EventOrdinal

	// A team first seen after a scoring event that had no opposing lineup on
	// record missed a plus/minus debit it can never recover; its players'
	// values are unknown from the start.
	if a.blind && ev.TeamID != "" {
		if _, ok := a.accs[accKey{model.EntityTeam, ev.TeamID}]; !ok {
			a.team(ev.TeamID)
			a.taint(ev.TeamID, ev.EventOrdinal)
		}
	}

	changed := make(map[accKey]bool)
	delta := a.applyScore(ev, changed)
	a.applyCounters(ev, changed)
	if delta > 0 {
		a.applyPlusMinus(ev, delta, courts, changed)
	}
	a.emit(ev.EventOrdinal, changed)
	return nil
}

// applyScore reconciles the running score and credits points. Returns the
// point delta of the event (0 for non-scoring events).
func (a *Aggregator) applyScore(ev *model.CanonicalEvent, changed map[accKey]bool) int {
	if !ev.IsScoring() || ev.TeamID == "" {
		return 0
	}
	a.inferSide(ev)

	delta := 0
	switch a.side[ev.TeamID] {
	case "home":
		delta = ev.ScoreAfter.Home - a.cur.Home
	case "away":
		delta = ev.ScoreAfter.Away - a.cur.Away
	}
	if delta <= 0 && ev.Shot != nil {
		// Provider omitted the running score; fall back to the shot value.
		delta = ev.Shot.Points
	}
	if delta <= 0 {
		return 0
	}

	if ev.ScoreAfter.Home >= a.cur.Home && ev.ScoreAfter.Away >= a.cur.Away {
		a.cur = ev.ScoreAfter
	} else if side := a.side[ev.TeamID]; side == "home" {
		a.cur.Home += delta
	} else {
		a.cur.Away += delta
	}

	team := a.team(ev.TeamID)
	team.stats.Points += delta
	changed[accKey{model.EntityTeam, ev.TeamID}] = true

	// The differential flipped for every other team too, so their rows
	// must be refreshed at this ordinal even though no counter moved.
	for _, other := range a.teams {
		if other != ev.TeamID {
			changed[accKey{model.EntityTeam, other}] = true
		}
	}

	if ev.PrimaryPlayerID != "" {
		p := a.player(ev.PrimaryPlayerID, ev.TeamID, ev.EventOrdinal)
		p.stats.Points += delta
		changed[accKey{model.EntityPlayer, ev.PrimaryPlayerID}] = true
	}
	return delta
}

// inferSide pins a team to home or away the first time it scores, by which
// scoreboard component moved. The opponent gets the remaining side.
func (a *Aggregator) inferSide(ev *model.CanonicalEvent) {
	if _, known := a.side[ev.TeamID]; known {
		return
	}
	switch {
	case ev.ScoreAfter.Home > a.cur.Home:
		a.side[ev.TeamID] = "home"
	case ev.ScoreAfter.Away > a.cur.Away:
		a.side[ev.TeamID] = "away"
	default:
		return
	}
	for _, other := range a.teams {
		if other == ev.TeamID {
			continue
		}
		if _, known := a.side[other]; !known {
			a.side[other] = opposite(a.side[ev.TeamID])
		}
	}
}

func opposite(side string) string {
	if side == "home" {
		return "away"
	}
	return "home"
}

// applyCounters updates the box-score counters implicated by the event kind
// for the actor and the team.
func (a *Aggregator) applyCounters(ev *model.CanonicalEvent, changed map[accKey]bool) {
	bump := func(f func(*model.StatLine)) {
		if ev.TeamID == "" {
			return
		}
		f(&a.team(ev.TeamID).stats)
		changed[accKey{model.EntityTeam, ev.TeamID}] = true
		if ev.PrimaryPlayerID != "" {
			f(&a.player(ev.PrimaryPlayerID, ev.TeamID, ev.EventOrdinal).stats)
			changed[accKey{model.EntityPlayer, ev.PrimaryPlayerID}] = true
		}
	}

	switch ev.Kind {
	case model.KindShotMade:
		three := isThree(ev)
		bump(func(s *model.StatLine) {
			s.FGA++
			s.FGM++
			if three {
				s.TPA++
				s.TPM++
			}
		})
		a.creditAssist(ev, changed)
	case model.KindShotMissed:
		three := isThree(ev)
		bump(func(s *model.StatLine) {
			s.FGA++
			if three {
				s.TPA++
			}
		})
	case model.KindFreeThrow:
		made := ev.Shot == nil || ev.Shot.Made
		bump(func(s *model.StatLine) {
			s.FTA++
			if made {
				s.FTM++
			}
		})
	case model.KindRebound:
		bump(func(s *model.StatLine) { s.Rebounds++ })
	case model.KindAssist:
		bump(func(s *model.StatLine) { s.Assists++ })
	case model.KindSteal:
		bump(func(s *model.StatLine) { s.Steals++ })
	case model.KindBlock:
		bump(func(s *model.StatLine) { s.Blocks++ })
	case model.KindTurnover:
		bump(func(s *model.StatLine) { s.Turnovers++ })
	case model.KindFoul:
		bump(func(s *model.StatLine) { s.Fouls++ })
	case model.KindScore, model.KindSubstitution, model.KindTimeout,
		model.KindJumpBall, model.KindPeriodBoundary, model.KindOther:
		// KindScore is handled by applyScore; the rest move no counters.
	}
}

// creditAssist credits the secondary player on a made shot.
func (a *Aggregator) creditAssist(ev *model.CanonicalEvent, changed map[accKey]bool) {
	if ev.SecondaryPlayerID == "" || ev.TeamID == "" {
		return
	}
	p := a.player(ev.SecondaryPlayerID, ev.TeamID, ev.EventOrdinal)
	p.stats.Assists++
	changed[accKey{model.EntityPlayer, ev.SecondaryPlayerID}] = true
	t := a.team(ev.TeamID)
	t.stats.Assists++
	changed[accKey{model.EntityTeam, ev.TeamID}] = true
}

// applyPlusMinus credits the score delta identically to all five on-court
// players of each team: positive for the scoring five, negative for the
// opposing five. This is the authoritative definition of plus/minus; it is
// never back-calculated from team totals.
func (a *Aggregator) applyPlusMinus(ev *model.CanonicalEvent, delta int, courts map[string]OnCourt, changed map[accKey]bool) {
	// A lineup absent from courts is unknown outright. Teams already on the
	// books lose plus/minus here; a team first seen later is caught by the
	// blind flag when it arrives.
	for _, teamID := range a.teams {
		if _, ok := courts[teamID]; !ok {
			a.taint(teamID, ev.EventOrdinal)
		}
	}
	opposed := false
	for teamID := range courts {
		if teamID != ev.TeamID {
			opposed = true
		}
	}
	if !opposed {
		a.blind = true
	}
	for teamID, court := range courts {
		sign := -1
		if teamID == ev.TeamID {
			sign = 1
		}
		if !court.Known {
			a.taint(teamID, ev.EventOrdinal)
			continue
		}
		for _, pid := range court.Players {
			p := a.player(pid, teamID, ev.EventOrdinal)
			if p.pmKnown {
				p.pm += sign * delta
			}
			changed[accKey{model.EntityPlayer, pid}] = true
		}
	}
}

// taint marks a team's plus/minus not-computable: a scoring event passed while
// its lineup was unknown, so no later cumulative value can be exact. The value
// is reported as unknown from here on, never defaulted to zero.
func (a *Aggregator) taint(teamID string, ordinal int) {
	if a.tainted[teamID] {
		return
	}
	a.tainted[teamID] = true
	a.report.Warnf(model.WarnLineupUnknown, ordinal,
		"scoring event with unknown lineup; plus/minus for team %s players is not computable", teamID)
	for key, acc := range a.accs {
		if key.typ == model.EntityPlayer && acc.teamID == teamID {
			acc.pmKnown = false
		}
	}
}

// emit appends one sparse row per changed entity, in deterministic order.
func (a *Aggregator) emit(ordinal int, changed map[accKey]bool) {
	keys := make([]accKey, 0, len(changed))
	for key := range changed {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typ != keys[j].typ {
			return keys[i].typ < keys[j].typ
		}
		return keys[i].id < keys[j].id
	})
	for _, key := range keys {
		a.rows = append(a.rows, a.row(key, ordinal))
		metrics.RecordSnapshotRow()
	}
}

// row materializes the current state of one entity as a snapshot row.
func (a *Aggregator) row(key accKey, ordinal int) model.Snapshot {
	acc := a.accs[key]
	diff := a.diffFor(acc.teamID)
	s := model.Snapshot{
		GameID:       a.gameID,
		EntityType:   key.typ,
		EntityID:     key.id,
		EventOrdinal: ordinal,
		Stats:        acc.stats,
		ScoreDiff:    diff,
		IsLeading:    diff > 0,
	}
	if key.typ == model.EntityPlayer {
		s.PlusMinus = acc.pm
		s.PlusMinusKnown = acc.pmKnown
	}
	return s
}

// diffFor returns the current score differential from a team's perspective.
func (a *Aggregator) diffFor(teamID string) int {
	switch a.side[teamID] {
	case "home":
		return a.cur.Home - a.cur.Away
	case "away":
		return a.cur.Away - a.cur.Home
	default:
		// Side unknowable only before either team has scored, when the
		// difference is zero anyway.
		return 0
	}
}

// team returns (creating if needed) a team accumulator.
func (a *Aggregator) team(teamID string) *accumulator {
	key := accKey{model.EntityTeam, teamID}
	acc, ok := a.accs[key]
	if !ok {
		acc = &accumulator{teamID: teamID}
		a.accs[key] = acc
		a.teams = append(a.teams, teamID)
	}
	return acc
}

// player returns (creating if needed) a player accumulator. A reference to a
// player missing from an explicit roster creates a stub and records a
// data-quality warning; it is never fatal.
func (a *Aggregator) player(playerID, teamID string, ordinal int) *accumulator {
	key := accKey{model.EntityPlayer, playerID}
	acc, ok := a.accs[key]
	if !ok {
		acc = &accumulator{teamID: teamID, pmKnown: !a.tainted[teamID]}
		a.accs[key] = acc
		if len(a.roster) > 0 && !a.roster[playerID] {
			a.report.Warnf(model.WarnUnknownPlayer, ordinal,
				"player %q not in roster; stub created", playerID)
			metrics.RecordUnknownPlayer()
		}
	}
	return acc
}

// Rows returns the sparse snapshot stream accumulated so far, in emission
// (and therefore ordinal) order.
func (a *Aggregator) Rows() []model.Snapshot { return a.rows }

// Entities returns every tracked entity key as (type, id) pairs, teams first,
// each group sorted by id.
func (a *Aggregator) Entities() []model.Snapshot {
	keys := make([]accKey, 0, len(a.accs))
	for key := range a.accs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typ != keys[j].typ {
			return keys[i].typ < keys[j].typ
		}
		return keys[i].id < keys[j].id
	})
	out := make([]model.Snapshot, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.Snapshot{
			GameID:     a.gameID,
			EntityType: key.typ,
			EntityID:   key.id,
		})
	}
	return out
}

// isThree detects a three-point attempt from the shot's declared value or its
// descriptive text, never from distance.
func isThree(ev *model.CanonicalEvent) bool {
	if ev.Shot == nil {
		return false
	}
	if ev.Shot.Points == 3 {
		return true
	}
	text := strings.ToLower(ev.Shot.TypeText)
	return strings.Contains(text, "3pt") || strings.Contains(text, "three")
}
