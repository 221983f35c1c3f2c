// Package timeline resolves "state as of X" queries against one game's sparse
// snapshot stream.
//
// The index never materializes full state per ordinal: resolving an instant
// means taking, for every tracked entity, its last row at or before the
// resolved ordinal; entities with no row yet report the zero baseline.
package timeline

import (
	"fmt"
	"iter"
	"sort"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// Default clutch-window thresholds; both are configurable per index.
const (
	defaultClutchClockSeconds = 300 // final five minutes
	defaultClutchMargin       = 5
	regulationPeriods         = 4
)

// entKey identifies a tracked entity.
type entKey struct {
	typ model.EntityType
	id  string
}

// Index is the immutable per-game query structure. Safe for concurrent reads
// once built.
type Index struct {
	gameID      string
	events      []model.CanonicalEvent
	rows        []model.Snapshot
	byEntity    map[entKey][]int // indices into rows, ascending ordinal
	entities    []entKey         // deterministic order: players, then teams, id asc
	lineups     []model.LineupInterval
	finalPeriod int
	lastOrdinal int

	clutchClock  float64
	clutchMargin int
}

// New builds the index for one fully reduced game. baseline lists every
// entity known to the aggregator (including roster players that never
// recorded a stat) so pre-event queries can return an all-zero state.
func New(res *model.GameResult, baseline []model.Snapshot, opts ...Option) *Index {
	idx := &Index{
		gameID:       res.GameID,
		events:       res.Events,
		rows:         res.Snapshots,
		byEntity:     make(map[entKey][]int),
		lineups:      res.Lineups,
		lastOrdinal:  model.BaselineOrdinal,
		clutchClock:  defaultClutchClockSeconds,
		clutchMargin: defaultClutchMargin,
	}
	for _, opt := range opts {
		opt(idx)
	}

	seen := make(map[entKey]bool)
	add := func(key entKey) {
		if !seen[key] {
			seen[key] = true
			idx.entities = append(idx.entities, key)
		}
	}
	for _, s := range baseline {
		add(entKey{s.EntityType, s.EntityID})
	}
	for i, row := range res.Snapshots {
		key := entKey{row.EntityType, row.EntityID}
		add(key)
		idx.byEntity[key] = append(idx.byEntity[key], i)
	}
	sort.Slice(idx.entities, func(i, j int) bool {
		if idx.entities[i].typ != idx.entities[j].typ {
			return idx.entities[i].typ < idx.entities[j].typ
		}
		return idx.entities[i].id < idx.entities[j].id
	})

	for i := range res.Events {
		if p := res.Events[i].Period; p > idx.finalPeriod {
			idx.finalPeriod = p
		}
		idx.lastOrdinal = res.Events[i].EventOrdinal
	}
	return idx
}

// Resolution is the full resolved state at one ordinal.
type Resolution struct {
	GameID  string
	Ordinal int
	Players []model.Snapshot
	Teams   []model.Snapshot
}

// ResolveAsOf resolves an instant and returns the last-write-at-or-before
// row for every tracked entity. Repeated calls with identical arguments
// return identical results.
func (idx *Index) ResolveAsOf(instant Instant) (Resolution, error) {
	ordinal, err := idx.ordinalOf(instant)
	if err != nil {
		return Resolution{}, err
	}
	res := Resolution{GameID: idx.gameID, Ordinal: ordinal}
	for _, key := range idx.entities {
		row := idx.lastRow(key, ordinal)
		if key.typ == model.EntityPlayer {
			res.Players = append(res.Players, row)
		} else {
			res.Teams = append(res.Teams, row)
		}
	}
	return res, nil
}

// lastRow returns the entity's last row at or before the ordinal, or the zero
// baseline when no such row exists.
func (idx *Index) lastRow(key entKey, ordinal int) model.Snapshot {
	indices := idx.byEntity[key]
	// Rightmost row with EventOrdinal <= ordinal.
	lo := sort.Search(len(indices), func(i int) bool {
		return idx.rows[indices[i]].EventOrdinal > ordinal
	})
	if lo == 0 {
		return model.Snapshot{
			GameID:         idx.gameID,
			EntityType:     key.typ,
			EntityID:       key.id,
			EventOrdinal:   model.BaselineOrdinal,
			PlusMinusKnown: key.typ == model.EntityPlayer,
		}
	}
	return idx.rows[indices[lo-1]]
}

// Lineup returns the five on-court players for a team at an ordinal, using
// the recorded intervals. The second return is false when the lineup was
// unknown at that point.
func (idx *Index) Lineup(teamID string, ordinal int) ([]string, bool) {
	players := make([]string, 0, 5)
	for _, iv := range idx.lineups {
		if iv.TeamID != teamID {
			continue
		}
		if iv.EnterOrdinal <= ordinal && (iv.Open() || ordinal < iv.ExitOrdinal) {
			players = append(players, iv.PlayerID)
		}
	}
	if len(players) != 5 {
		return nil, false
	}
	sort.Strings(players)
	return players, true
}

// InClutch reports whether the event at the given ordinal falls inside the
// clutch window: final period, clock at or below the threshold, and score
// within the margin. Exposed as a predicate, never materialized.
func (idx *Index) InClutch(ordinal int) bool {
	if ordinal < 0 || ordinal >= len(idx.events) {
		return false
	}
	ev := &idx.events[ordinal]
	if ev.Period < idx.finalPeriod || ev.Period < regulationPeriods {
		return false
	}
	if ev.ClockRemaining > idx.clutchClock {
		return false
	}
	diff := ev.ScoreAfter.Diff()
	if diff < 0 {
		diff = -diff
	}
	return diff <= idx.clutchMargin
}

// LeadChanges returns a finite, restartable sequence of the ordinals where
// the score lead flips from one team to the other. Ties in between do not
// count until the other team actually takes the lead; each range restarts
// the linear scan.
func (idx *Index) LeadChanges() iter.Seq[int] {
	return func(yield func(int) bool) {
		lastSign := 0
		for i := range idx.events {
			sign := signOf(idx.events[i].ScoreAfter.Diff())
			if sign == 0 {
				continue
			}
			if lastSign != 0 && sign != lastSign {
				if !yield(idx.events[i].EventOrdinal) {
					return
				}
			}
			lastSign = sign
		}
	}
}

func signOf(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// ordinalOf maps an instant onto a concrete event ordinal.
func (idx *Index) ordinalOf(instant Instant) (int, error) {
	switch instant.kind {
	case instantOrdinal:
		return instant.ordinal, nil
	case instantClock:
		return idx.clockOrdinal(instant.period, instant.clock)
	case instantPeriodEnd:
		return idx.periodEndOrdinal(instant.period)
	case instantHalftime:
		return idx.periodEndOrdinal(2)
	case instantClutchStart:
		return idx.clutchStartOrdinal()
	default:
		return 0, fmt.Errorf("%w: unrecognized instant", ErrBadInstant)
	}
}

// clockOrdinal resolves "period p, c seconds remaining": the last event at or
// before that game-clock position.
func (idx *Index) clockOrdinal(period int, clock float64) (int, error) {
	if period > idx.finalPeriod {
		return 0, fmt.Errorf("%w: period %d beyond recorded data", ErrIncompleteGame, period)
	}
	last := model.BaselineOrdinal
	for i := range idx.events {
		ev := &idx.events[i]
		if ev.Period < period || (ev.Period == period && ev.ClockRemaining >= clock) {
			last = ev.EventOrdinal
			continue
		}
		break
	}
	return last, nil
}

// periodEndOrdinal resolves period_end(n) via canonical PERIOD_BOUNDARY
// markers, never wall-clock heuristics. The marker alone is not enough: the
// data must show the period actually ended (the marker at clock zero, or any
// event from a later period), otherwise the instant is signaled incomplete
// rather than resolved to a guess.
func (idx *Index) periodEndOrdinal(period int) (int, error) {
	found := -1
	ended := false
	for i := range idx.events {
		ev := &idx.events[i]
		if ev.Period > period {
			ended = true
			continue
		}
		if ev.Kind == model.KindPeriodBoundary && ev.Period == period {
			found = ev.EventOrdinal
			if ev.ClockRemaining == 0 {
				ended = true
			}
		}
	}
	if found < 0 || !ended {
		return 0, fmt.Errorf("%w: no end of period %d recorded", ErrIncompleteGame, period)
	}
	return found, nil
}

// clutchStartOrdinal resolves the first final-period event inside the clutch
// clock threshold.
func (idx *Index) clutchStartOrdinal() (int, error) {
	if idx.finalPeriod < regulationPeriods {
		return 0, fmt.Errorf("%w: game truncated before the final period", ErrIncompleteGame)
	}
	for i := range idx.events {
		ev := &idx.events[i]
		if ev.Period == idx.finalPeriod && ev.ClockRemaining <= idx.clutchClock {
			return ev.EventOrdinal, nil
		}
	}
	return 0, fmt.Errorf("%w: no events inside the clutch window", ErrIncompleteGame)
}

// LastOrdinal returns the ordinal of the final recorded event.
func (idx *Index) LastOrdinal() int { return idx.lastOrdinal }
