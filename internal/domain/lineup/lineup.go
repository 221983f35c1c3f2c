// Package lineup tracks the five on-court players per team as explicit
// intervals, driven by substitution events.
//
// Substitutions are modeled as enter/exit transitions on an interval list
// rather than a mutable roster array, so the tracker is independently
// testable and can degrade safely when a feed contradicts itself.
package lineup

import (
	"fmt"
	"sort"

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// PlayersOnCourt is the number of simultaneous players per team.
const PlayersOnCourt = 5

// teamPhase is the lineup knowledge state of one team.
type teamPhase int

const (
	// phaseInferring: collecting the first five distinct credited players.
	phaseInferring teamPhase = iota
	// phaseKnown: exactly five open intervals, substitutions validated.
	phaseKnown
	// phaseDegraded: an invalid substitution (or a substitution during
	// inference) poisoned the lineup until the next period boundary.
	phaseDegraded
)

// teamState holds one team's open intervals and inference progress.
type teamState struct {
	id         string
	phase      teamPhase
	onCourt    map[string]int // player id -> enter ordinal
	candidates []string       // distinct credited players, in credit order
	inferStart int            // ordinal where the current inference stretch began
	inferred   bool           // lineup came from inference, not an explicit list
}

// Tracker maintains lineup intervals for both teams of one game.
// It is not safe for concurrent use; each game owns its tracker.
type Tracker struct {
	gameID       string
	teams        map[string]*teamState
	intervals    []model.LineupInterval
	report       *model.QualityReport
	stretchStart int // ordinal of the last period boundary seen
}

// NewTracker creates a tracker for one game. The report collects lineup
// warnings; starters, when a provider supplies them, arrive via WithStarters.
func NewTracker(gameID string, report *model.QualityReport, opts ...Option) *Tracker {
	t := &Tracker{
		gameID: gameID,
		teams:  make(map[string]*teamState),
		report: report,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// team returns (creating if needed) the state for a team id.
func (t *Tracker) team(id string) *teamState {
	ts, ok := t.teams[id]
	if !ok {
		ts = &teamState{
			id:         id,
			phase:      phaseInferring,
			onCourt:    make(map[string]int),
			inferStart: t.stretchStart,
		}
		t.teams[id] = ts
	}
	return ts
}

// Apply advances the tracker by one canonical event.
func (t *Tracker) Apply(ev *model.CanonicalEvent) {
	if ev.Kind == model.KindPeriodBoundary {
		t.periodBoundary(ev.EventOrdinal)
		return
	}
	if ev.TeamID == "" {
		return
	}
	ts := t.team(ev.TeamID)

	if ev.Kind == model.KindSubstitution {
		t.substitute(ts, ev)
		return
	}
	t.credit(ts, ev)
}

// credit feeds inference with the players an event credits.
func (t *Tracker) credit(ts *teamState, ev *model.CanonicalEvent) {
	if ts.phase != phaseInferring {
		return
	}
	for _, pid := range []string{ev.PrimaryPlayerID, ev.SecondaryPlayerID} {
		if pid == "" {
			continue
		}
		if !contains(ts.candidates, pid) {
			ts.candidates = append(ts.candidates, pid)
		}
		if len(ts.candidates) == PlayersOnCourt {
			t.openInferred(ts)
			return
		}
	}
}

// openInferred promotes five inferred candidates to a known lineup, opening
// their intervals retroactively at the start of the inference stretch.
//
// Known accuracy gap: a starter with no credited stat before their first
// substitution (an early foul-out, say) is invisible to this inference. The
// report notes every inferred lineup so consumers can judge for themselves.
func (t *Tracker) openInferred(ts *teamState) {
	for _, pid := range ts.candidates {
		ts.onCourt[pid] = ts.inferStart
	}
	ts.candidates = nil
	ts.phase = phaseKnown
	ts.inferred = true
	t.report.Warnf(model.WarnLineupInferred, ts.inferStart,
		"team %s lineup inferred from first five credited players", ts.id)
}

// substitute applies SUBSTITUTION(team, out, in): the incoming player is the
// event's primary, the outgoing player its secondary.
func (t *Tracker) substitute(ts *teamState, ev *model.CanonicalEvent) {
	in, out := ev.PrimaryPlayerID, ev.SecondaryPlayerID

	switch ts.phase {
	case phaseInferring:
		// A substitution before the starting five is resolved means the
		// starters cannot be determined for this stretch.
		t.degrade(ts, ev.EventOrdinal,
			fmt.Sprintf("substitution at ordinal %d before starting lineup resolved", ev.EventOrdinal))
		return
	case phaseDegraded:
		return
	case phaseKnown:
	}

	if _, onCourt := ts.onCourt[out]; !onCourt || out == "" {
		t.invalidSubstitution(ts, ev, fmt.Sprintf("outgoing player %q is not on court", out))
		return
	}
	if _, onCourt := ts.onCourt[in]; onCourt || in == "" {
		t.invalidSubstitution(ts, ev, fmt.Sprintf("incoming player %q is already on court", in))
		return
	}

	t.closeInterval(ts, out, ev.EventOrdinal)
	ts.onCourt[in] = ev.EventOrdinal
}

// invalidSubstitution records the violation and degrades the team to unknown
// until the next period boundary. Safe-fail: intervals up to here stay valid.
func (t *Tracker) invalidSubstitution(ts *teamState, ev *model.CanonicalEvent, reason string) {
	t.report.Warnf(model.WarnInvalidSubstitution, ev.EventOrdinal,
		"team %s: %s", ts.id, reason)
	metrics.RecordInvalidSubstitution()
	t.degrade(ts, ev.EventOrdinal, reason)
}

// degrade closes every open interval at the given ordinal and marks the team
// unknown until the next period boundary.
func (t *Tracker) degrade(ts *teamState, ordinal int, reason string) {
	for pid := range ts.onCourt {
		t.closeInterval(ts, pid, ordinal)
	}
	ts.candidates = nil
	ts.phase = phaseDegraded
	t.report.Warnf(model.WarnLineupUnknown, ordinal, "team %s lineup unknown: %s", ts.id, reason)
}

// periodBoundary restarts inference for degraded teams and scopes unfinished
// inference to the period it ran in: candidates collected before the boundary
// never open intervals that reach back across it.
func (t *Tracker) periodBoundary(ordinal int) {
	t.stretchStart = ordinal
	ids := make([]string, 0, len(t.teams))
	for id := range t.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ts := t.teams[id]
		switch ts.phase {
		case phaseDegraded:
			ts.phase = phaseInferring
			ts.candidates = nil
			ts.inferStart = ordinal
		case phaseInferring:
			if len(ts.candidates) > 0 {
				t.report.Warnf(model.WarnLineupUnknown, ordinal,
					"team %s: period ended before starting lineup resolved", ts.id)
			}
			ts.candidates = nil
			ts.inferStart = ordinal
		case phaseKnown:
		}
	}
}

// closeInterval moves one player's open interval into the closed list.
func (t *Tracker) closeInterval(ts *teamState, playerID string, exit int) {
	enter, ok := ts.onCourt[playerID]
	if !ok {
		return
	}
	delete(ts.onCourt, playerID)
	t.intervals = append(t.intervals, model.LineupInterval{
		GameID:       t.gameID,
		TeamID:       ts.id,
		PlayerID:     playerID,
		EnterOrdinal: enter,
		ExitOrdinal:  exit,
	})
}

// OnCourt returns the five players currently on court for a team. The second
// return is false while the lineup is unknown (inferring or degraded).
func (t *Tracker) OnCourt(teamID string) ([]string, bool) {
	ts, ok := t.teams[teamID]
	if !ok || ts.phase != phaseKnown {
		return nil, false
	}
	players := make([]string, 0, PlayersOnCourt)
	for pid := range ts.onCourt {
		players = append(players, pid)
	}
	return players, true
}

// Finish closes the books: still-open intervals are emitted with
// ExitOrdinal -1 and the full interval list is returned.
func (t *Tracker) Finish() []model.LineupInterval {
	for _, ts := range t.teams {
		for pid, enter := range ts.onCourt {
			t.intervals = append(t.intervals, model.LineupInterval{
				GameID:       t.gameID,
				TeamID:       ts.id,
				PlayerID:     pid,
				EnterOrdinal: enter,
				ExitOrdinal:  -1,
			})
		}
		ts.onCourt = make(map[string]int)
	}
	return t.intervals
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
