// Package shot classifies shot events spatially and links them to the
// snapshot timeline by event ordinal.
//
// Classification is a pure function of (x, y, type text) over a configurable
// threshold table, so re-classifying the same input is idempotent and
// reproducible. The shot type comes from the descriptive text, never from
// distance: distance heuristics are unreliable near the arc.
package shot

import (
	"math"
	"strings"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// Thresholds is the zone-classification policy table. The defaults are
// inherited from the observed feeds (including the x<10 / x>40 corner-three
// cutoff) and carry no geometric guarantee; treat them as configuration, not
// invariants.
type Thresholds struct {
	CourtWidth  float64 `koanf:"court_width"`  // feet, sideline to sideline
	CourtLength float64 `koanf:"court_length"` // feet, baseline to baseline
	HoopX       float64 `koanf:"hoop_x"`
	HoopY       float64 `koanf:"hoop_y"`
	CornerDepth float64 `koanf:"corner_depth"` // y at or below which threes are corner threes
	CornerMinX  float64 `koanf:"corner_min_x"` // x outside [min,max] marks a corner
	CornerMaxX  float64 `koanf:"corner_max_x"`
	PaintMinX   float64 `koanf:"paint_min_x"`
	PaintMaxX   float64 `koanf:"paint_max_x"`
	PaintMaxY   float64 `koanf:"paint_max_y"`
	ShortMidMax float64 `koanf:"short_mid_max"` // feet from hoop
	LongMidMax  float64 `koanf:"long_mid_max"`
}

// DefaultThresholds returns the observed-system defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CourtWidth:  50,
		CourtLength: 94,
		HoopX:       25,
		HoopY:       5.25,
		CornerDepth: 14,
		CornerMinX:  10,
		CornerMaxX:  40,
		PaintMinX:   17,
		PaintMaxX:   33,
		PaintMaxY:   19,
		ShortMidMax: 14,
		LongMidMax:  20,
	}
}

// Classifier classifies shots against one threshold table. It holds no other
// state.
type Classifier struct {
	t Thresholds
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{t: DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize folds full-court coordinates into the fixed half-court frame:
// shots recorded against the far basket are mirrored through midcourt.
func (c *Classifier) Normalize(x, y float64) (float64, float64) {
	if y > c.t.CourtLength/2 {
		x = c.t.CourtWidth - x
		y = c.t.CourtLength - y
	}
	return x, y
}

// Classify returns the shot type and court zone for raw provider coordinates
// and the shot's descriptive text.
func (c *Classifier) Classify(x, y float64, typeText string) (model.ShotType, model.ShotZone) {
	x, y = c.Normalize(x, y)
	st := typeFromText(typeText)
	if st == model.ShotThreePoint {
		if y <= c.t.CornerDepth && (x < c.t.CornerMinX || x > c.t.CornerMaxX) {
			return st, model.ZoneCornerThree
		}
		return st, model.ZoneAboveBreakThree
	}
	return st, c.twoPointZone(x, y)
}

// twoPointZone buckets a two-point (or free-throw) location.
func (c *Classifier) twoPointZone(x, y float64) model.ShotZone {
	if x >= c.t.PaintMinX && x <= c.t.PaintMaxX && y <= c.t.PaintMaxY {
		return model.ZonePaint
	}
	dist := math.Hypot(x-c.t.HoopX, y-c.t.HoopY)
	switch {
	case dist <= c.t.ShortMidMax:
		return model.ZoneShortMid
	case dist <= c.t.LongMidMax:
		return model.ZoneLongMid
	default:
		return model.ZoneDeepTwo
	}
}

// FromEvent builds the spatially classified ShotEvent for a canonical event,
// joined to the timeline by the event's ordinal. The second return is false
// for events without a shot payload.
func (c *Classifier) FromEvent(ev *model.CanonicalEvent) (model.ShotEvent, bool) {
	if ev.Shot == nil {
		return model.ShotEvent{}, false
	}
	st, zone := c.Classify(ev.Shot.X, ev.Shot.Y, ev.Shot.TypeText)
	x, y := c.Normalize(ev.Shot.X, ev.Shot.Y)
	return model.ShotEvent{
		GameID:       ev.GameID,
		EventOrdinal: ev.EventOrdinal,
		PlayerID:     ev.PrimaryPlayerID,
		TeamID:       ev.TeamID,
		X:            x,
		Y:            y,
		Type:         st,
		Zone:         zone,
		Made:         ev.Shot.Made,
	}, true
}

// typeFromText maps descriptive text to a shot type. Unmarked shots default
// to two-pointers, the overwhelmingly common case.
func typeFromText(text string) model.ShotType {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "free throw"):
		return model.ShotFreeThrow
	case strings.Contains(t, "3pt") || strings.Contains(t, "three"):
		return model.ShotThreePoint
	default:
		return model.ShotTwoPoint
	}
}
