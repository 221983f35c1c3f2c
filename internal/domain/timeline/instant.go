package timeline

// instantKind discriminates the Instant variants.
type instantKind int

const (
	instantOrdinal instantKind = iota
	instantClock
	instantPeriodEnd
	instantHalftime
	instantClutchStart
)

// Instant names a point on a game's timeline: a concrete ordinal, a game
// clock position, or a named instant resolved via period boundary markers.
type Instant struct {
	kind    instantKind
	ordinal int
	period  int
	clock   float64
}

// AtOrdinal addresses a concrete event ordinal.
func AtOrdinal(n int) Instant { return Instant{kind: instantOrdinal, ordinal: n} }

// AtClock addresses "period p with clock seconds remaining".
func AtClock(period int, clockRemaining float64) Instant {
	return Instant{kind: instantClock, period: period, clock: clockRemaining}
}

// PeriodEnd addresses the end-of-period boundary marker for period n.
func PeriodEnd(n int) Instant { return Instant{kind: instantPeriodEnd, period: n} }

// Halftime addresses the end of period two.
func Halftime() Instant { return Instant{kind: instantHalftime} }

// ClutchStart addresses the first final-period event inside the configured
// clutch clock threshold.
func ClutchStart() Instant { return Instant{kind: instantClutchStart} }
