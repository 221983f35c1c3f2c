// Package normalize maps heterogeneous provider payloads into the canonical,
// strictly ordered event stream everything downstream consumes.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// Normalizer turns provider-shaped raw events into canonical events.
// It is stateless across games; each Run works on one game's slice.
type Normalizer struct {
	kinds map[string]model.EventKind
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		kinds: defaultKindTable(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// defaultKindTable maps lowercase provider type strings to canonical kinds.
// Keys are matched exactly first, then by substring scan.
func defaultKindTable() map[string]model.EventKind {
	return map[string]model.EventKind{
		"made shot":       model.KindShotMade,
		"missed shot":     model.KindShotMissed,
		"free throw":      model.KindFreeThrow,
		"rebound":         model.KindRebound,
		"assist":          model.KindAssist,
		"steal":           model.KindSteal,
		"block":           model.KindBlock,
		"turnover":        model.KindTurnover,
		"foul":            model.KindFoul,
		"substitution":    model.KindSubstitution,
		"timeout":         model.KindTimeout,
		"jump ball":       model.KindJumpBall,
		"jumpball":        model.KindJumpBall,
		"end of period":   model.KindPeriodBoundary,
		"end period":      model.KindPeriodBoundary,
		// Period-start rows are kept in the timeline but are never boundary
		// markers: a PERIOD_BOUNDARY asserts its period ended.
		"start of period": model.KindOther,
		"start period":    model.KindOther,
	}
}

// ordered is a raw event paired with its parsed sort key.
type ordered struct {
	raw   *model.RawEvent
	clock float64
}

// Run normalizes one game's raw events into a dense, strictly ordered
// canonical stream. Malformed records are skipped with a warning; an
// unresolvable ordinal collision is fatal for the game.
func (n *Normalizer) Run(raws []model.RawEvent, report *model.QualityReport) ([]model.CanonicalEvent, error) {
	kept := make([]ordered, 0, len(raws))
	for i := range raws {
		raw := &raws[i]
		if reason := n.malformed(raw); reason != "" {
			report.Warnf(model.WarnMalformedEvent, model.BaselineOrdinal,
				"skipping raw event %q: %s", raw.ProviderID, reason)
			metrics.RecordEventMalformed()
			continue
		}
		kept = append(kept, ordered{raw: raw, clock: ParseClock(raw.Clock)})
	}

	// Stable order: period, then clock remaining (more time = earlier), then
	// provider-native id. Clock alone is never the full key since several
	// events can share one clock value.
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.raw.Period != b.raw.Period {
			return a.raw.Period < b.raw.Period
		}
		if a.clock != b.clock {
			return a.clock > b.clock
		}
		return a.raw.ProviderID < b.raw.ProviderID
	})

	events := make([]model.CanonicalEvent, 0, len(kept))
	for i := range kept {
		if i > 0 && collides(kept[i-1], kept[i]) {
			return nil, fmt.Errorf("%w: duplicate ordering key for provider id %q at period %d clock %.1f",
				ErrFatalStream, kept[i].raw.ProviderID, kept[i].raw.Period, kept[i].clock)
		}
		ev := n.canonical(kept[i].raw, kept[i].clock)
		ev.EventOrdinal = i
		events = append(events, ev)
		metrics.RecordEventNormalized()
	}
	return events, nil
}

// collides reports an unresolvable ordinal collision: two events whose full
// ordering key, provider id included, is identical.
func collides(a, b ordered) bool {
	return a.raw.Period == b.raw.Period &&
		a.clock == b.clock &&
		a.raw.ProviderID == b.raw.ProviderID
}

// canonical builds a single canonical event; the ordinal is assigned by Run
// after ordering.
func (n *Normalizer) canonical(raw *model.RawEvent, clock float64) model.CanonicalEvent {
	ev := model.CanonicalEvent{
		GameID:            raw.GameID,
		Period:            raw.Period,
		ClockRemaining:    clock,
		Kind:              n.kind(raw),
		TeamID:            raw.TeamID,
		PrimaryPlayerID:   raw.PlayerID,
		SecondaryPlayerID: raw.SecondaryPlayerID,
		ScoreAfter:        model.Score{Home: raw.HomeScore, Away: raw.AwayScore},
		RawText:           raw.Description,
	}
	if raw.Shot != nil {
		shot := *raw.Shot
		ev.Shot = &shot
	}
	return ev
}

// kind derives the canonical kind. A shot payload wins over text; free throws
// stay KindFreeThrow whether made or missed.
func (n *Normalizer) kind(raw *model.RawEvent) model.EventKind {
	text := strings.ToLower(strings.TrimSpace(raw.TypeText))
	if raw.Shot != nil {
		if strings.Contains(text, "free throw") || strings.Contains(strings.ToLower(raw.Shot.TypeText), "free throw") {
			return model.KindFreeThrow
		}
		if raw.Shot.Made {
			return model.KindShotMade
		}
		return model.KindShotMissed
	}
	if k, ok := n.kinds[text]; ok {
		return k
	}
	// Substring fallback runs over a fixed-order list so identical raw input
	// always yields the same kind.
	for _, pair := range keywordScan {
		if strings.Contains(text, pair.key) {
			return pair.kind
		}
	}
	if strings.Contains(text, "period") {
		return periodKind(text)
	}
	return model.KindOther
}

// periodKind separates period-end markers from period-start rows. Only an end
// marker becomes a PERIOD_BOUNDARY; named instants resolve against it, so a
// start-of-period row must never masquerade as one.
func periodKind(text string) model.EventKind {
	if strings.Contains(text, "start") || strings.Contains(text, "begin") {
		return model.KindOther
	}
	return model.KindPeriodBoundary
}

// keywordScan is the deterministic substring fallback, most specific first.
var keywordScan = []struct {
	key  string
	kind model.EventKind
}{
	{"free throw", model.KindFreeThrow},
	{"substitution", model.KindSubstitution},
	{"jump ball", model.KindJumpBall},
	{"rebound", model.KindRebound},
	{"assist", model.KindAssist},
	{"steal", model.KindSteal},
	{"block", model.KindBlock},
	{"turnover", model.KindTurnover},
	{"foul", model.KindFoul},
	{"timeout", model.KindTimeout},
	{"makes", model.KindShotMade},
	{"misses", model.KindShotMissed},
}

// malformed returns a non-empty reason when a raw event is unusable.
func (n *Normalizer) malformed(raw *model.RawEvent) string {
	switch {
	case raw.GameID == "":
		return "missing game id"
	case raw.Period < 1:
		return "missing or invalid period"
	case raw.TypeText == "" && raw.Shot == nil:
		return "no event type derivable"
	default:
		return ""
	}
}
