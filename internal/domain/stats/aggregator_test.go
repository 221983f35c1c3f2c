package stats_test

import (
	"testing"

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	homeFive = []string{"A", "h2", "h3", "h4", "h5"}
	awayFive = []string{"B", "v2", "v3", "v4", "v5"}
)

func knownCourts() map[string]stats.OnCourt {
	return map[string]stats.OnCourt{
		"H": {Players: homeFive, Known: true},
		"V": {Players: awayFive, Known: true},
	}
}

// lastRow returns the last snapshot row for an entity at or before ordinal.
func lastRow(rows []model.Snapshot, typ model.EntityType, id string, ordinal int) (model.Snapshot, bool) {
	var out model.Snapshot
	found := false
	for _, r := range rows {
		if r.EntityType == typ && r.EntityID == id && r.EventOrdinal <= ordinal {
			out = r
			found = true
		}
	}
	return out, found
}

func TestAggregatorToyGame(t *testing.T) {
	Convey("Given the four-event toy game", t, func() {
		report := model.NewQualityReport("g1")
		agg := stats.New("g1", report, stats.WithTeams("H", "V"))

		events := []model.CanonicalEvent{
			{GameID: "g1", EventOrdinal: 0, Period: 1, Kind: model.KindJumpBall, TeamID: "H"},
			{GameID: "g1", EventOrdinal: 1, Period: 1, Kind: model.KindShotMade, TeamID: "H",
				PrimaryPlayerID: "A", ScoreAfter: model.Score{Home: 2, Away: 0},
				Shot: &model.ShotDetail{X: 20, Y: 10, Made: true, Points: 2}},
			{GameID: "g1", EventOrdinal: 2, Period: 1, Kind: model.KindShotMade, TeamID: "V",
				PrimaryPlayerID: "B", ScoreAfter: model.Score{Home: 2, Away: 3},
				Shot: &model.ShotDetail{X: 5, Y: 8, TypeText: "3PT Jump Shot", Made: true, Points: 3}},
			{GameID: "g1", EventOrdinal: 3, Period: 1, Kind: model.KindSubstitution, TeamID: "H",
				PrimaryPlayerID: "C", SecondaryPlayerID: "A"},
		}
		for i := range events {
			So(agg.Apply(&events[i], knownCourts()), ShouldBeNil)
		}
		rows := agg.Rows()

		Convey("Then the snapshot after the 2pt make shows the points", func() {
			a, ok := lastRow(rows, model.EntityPlayer, "A", 1)
			So(ok, ShouldBeTrue)
			So(a.Stats.Points, ShouldEqual, 2)
			So(a.Stats.FGM, ShouldEqual, 1)
			So(a.Stats.FGA, ShouldEqual, 1)

			h, ok := lastRow(rows, model.EntityTeam, "H", 1)
			So(ok, ShouldBeTrue)
			So(h.Stats.Points, ShouldEqual, 2)
			So(h.ScoreDiff, ShouldEqual, 2)
			So(h.IsLeading, ShouldBeTrue)
		})

		Convey("Then the snapshot after the three shows the flipped lead", func() {
			v, ok := lastRow(rows, model.EntityTeam, "V", 2)
			So(ok, ShouldBeTrue)
			So(v.Stats.Points, ShouldEqual, 3)
			So(v.Stats.TPM, ShouldEqual, 1)
			So(v.ScoreDiff, ShouldEqual, 1) // from V's perspective

			h, _ := lastRow(rows, model.EntityTeam, "H", 2)
			So(h.ScoreDiff, ShouldEqual, -1)
			So(h.IsLeading, ShouldBeFalse)
		})

		Convey("Then plus/minus is credited identically across each five", func() {
			// After both makes: home five at +2-3 = -1, away five at +1.
			for _, pid := range homeFive {
				row, ok := lastRow(rows, model.EntityPlayer, pid, 2)
				So(ok, ShouldBeTrue)
				So(row.PlusMinusKnown, ShouldBeTrue)
				So(row.PlusMinus, ShouldEqual, -1)
			}
			for _, pid := range awayFive {
				row, ok := lastRow(rows, model.EntityPlayer, pid, 2)
				So(ok, ShouldBeTrue)
				So(row.PlusMinus, ShouldEqual, 1)
			}
		})

		Convey("Then the substitution changes no counters", func() {
			for _, pid := range homeFive {
				before, _ := lastRow(rows, model.EntityPlayer, pid, 2)
				after, _ := lastRow(rows, model.EntityPlayer, pid, 3)
				So(after.Stats, ShouldResemble, before.Stats)
				So(after.PlusMinus, ShouldEqual, before.PlusMinus)
			}
		})
	})
}

func TestAggregatorCounters(t *testing.T) {
	Convey("Given an aggregator", t, func() {
		report := model.NewQualityReport("g1")
		agg := stats.New("g1", report)

		apply := func(ordinal int, kind model.EventKind, team, primary, secondary string, shot *model.ShotDetail, after model.Score) {
			ev := model.CanonicalEvent{
				GameID: "g1", EventOrdinal: ordinal, Period: 1, Kind: kind,
				TeamID: team, PrimaryPlayerID: primary, SecondaryPlayerID: secondary,
				Shot: shot, ScoreAfter: after,
			}
			So(agg.Apply(&ev, nil), ShouldBeNil)
		}

		Convey("When a made three carries an assist credit", func() {
			apply(0, model.KindShotMade, "H", "p1", "p2",
				&model.ShotDetail{X: 3, Y: 5, TypeText: "3PT Jump Shot", Made: true, Points: 3},
				model.Score{Home: 3})

			p1, _ := lastRow(agg.Rows(), model.EntityPlayer, "p1", 0)
			So(p1.Stats.Points, ShouldEqual, 3)
			So(p1.Stats.TPM, ShouldEqual, 1)
			So(p1.Stats.TPA, ShouldEqual, 1)
			So(p1.Stats.FGM, ShouldEqual, 1)

			p2, _ := lastRow(agg.Rows(), model.EntityPlayer, "p2", 0)
			So(p2.Stats.Assists, ShouldEqual, 1)
		})

		Convey("When a shot misses", func() {
			apply(0, model.KindShotMissed, "H", "p1", "",
				&model.ShotDetail{X: 20, Y: 10, Made: false, Points: 2}, model.Score{})
			apply(1, model.KindRebound, "V", "p9", "", nil, model.Score{})

			p1, _ := lastRow(agg.Rows(), model.EntityPlayer, "p1", 1)
			So(p1.Stats.FGA, ShouldEqual, 1)
			So(p1.Stats.FGM, ShouldEqual, 0)
			So(p1.Stats.Points, ShouldEqual, 0)

			p9, _ := lastRow(agg.Rows(), model.EntityPlayer, "p9", 1)
			So(p9.Stats.Rebounds, ShouldEqual, 1)
		})

		Convey("When counters accumulate across events", func() {
			apply(0, model.KindSteal, "H", "p1", "", nil, model.Score{})
			apply(1, model.KindBlock, "H", "p1", "", nil, model.Score{})
			apply(2, model.KindTurnover, "H", "p1", "", nil, model.Score{})
			apply(3, model.KindFoul, "H", "p1", "", nil, model.Score{})
			apply(4, model.KindFreeThrow, "H", "p1", "",
				&model.ShotDetail{X: 25, Y: 19, TypeText: "Free Throw", Made: true, Points: 1},
				model.Score{Home: 1})

			p1, _ := lastRow(agg.Rows(), model.EntityPlayer, "p1", 4)
			So(p1.Stats.Steals, ShouldEqual, 1)
			So(p1.Stats.Blocks, ShouldEqual, 1)
			So(p1.Stats.Turnovers, ShouldEqual, 1)
			So(p1.Stats.Fouls, ShouldEqual, 1)
			So(p1.Stats.FTM, ShouldEqual, 1)
			So(p1.Stats.FTA, ShouldEqual, 1)
			So(p1.Stats.Points, ShouldEqual, 1)

			Convey("Then score-accumulating counters never decrease", func() {
				prev := map[string]model.StatLine{}
				for _, row := range agg.Rows() {
					if row.EntityType != model.EntityPlayer {
						continue
					}
					last := prev[row.EntityID]
					So(row.Stats.Points, ShouldBeGreaterThanOrEqualTo, last.Points)
					So(row.Stats.FGA, ShouldBeGreaterThanOrEqualTo, last.FGA)
					So(row.Stats.FTA, ShouldBeGreaterThanOrEqualTo, last.FTA)
					prev[row.EntityID] = row.Stats
				}
			})
		})
	})
}

func TestAggregatorOrdinalOrder(t *testing.T) {
	Convey("Given an aggregator that already consumed ordinal 5", t, func() {
		agg := stats.New("g1", model.NewQualityReport("g1"))
		ev := model.CanonicalEvent{GameID: "g1", EventOrdinal: 5, Kind: model.KindFoul, TeamID: "H", PrimaryPlayerID: "p1"}
		So(agg.Apply(&ev, nil), ShouldBeNil)

		Convey("When a non-increasing ordinal arrives", func() {
			stale := ev
			stale.EventOrdinal = 5
			err := agg.Apply(&stale, nil)

			Convey("Then the stream is rejected", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, stats.ErrOrdinalOrder)
			})
		})
	})
}

func TestAggregatorUnknownLineup(t *testing.T) {
	Convey("Given a scoring event while a team's lineup is unknown", t, func() {
		report := model.NewQualityReport("g1")
		agg := stats.New("g1", report,
			stats.WithTeams("H", "V"),
			stats.WithRoster(map[string][]string{"H": homeFive, "V": awayFive}),
		)
		courts := map[string]stats.OnCourt{
			"H": {Players: homeFive, Known: true},
			"V": {Known: false},
		}
		ev := model.CanonicalEvent{
			GameID: "g1", EventOrdinal: 0, Period: 1, Kind: model.KindShotMade, TeamID: "H",
			PrimaryPlayerID: "A", ScoreAfter: model.Score{Home: 2},
			Shot: &model.ShotDetail{X: 20, Y: 10, Made: true, Points: 2},
		}
		So(agg.Apply(&ev, courts), ShouldBeNil)

		Convey("Then the unknown side's plus/minus is not computable, never zero", func() {
			for _, pid := range awayFive {
				row, ok := lastRow(agg.Rows(), model.EntityPlayer, pid, 0)
				if !ok {
					// no row emitted is fine; the accumulator itself is tainted
					continue
				}
				So(row.PlusMinusKnown, ShouldBeFalse)
			}
			So(report.Count(model.WarnLineupUnknown), ShouldEqual, 1)
		})

		Convey("Then the known side is still credited", func() {
			for _, pid := range homeFive {
				row, ok := lastRow(agg.Rows(), model.EntityPlayer, pid, 0)
				So(ok, ShouldBeTrue)
				So(row.PlusMinusKnown, ShouldBeTrue)
				So(row.PlusMinus, ShouldEqual, 2)
			}
		})

		Convey("Then the taint survives later known-lineup events", func() {
			later := ev
			later.EventOrdinal = 1
			later.ScoreAfter = model.Score{Home: 4}
			So(agg.Apply(&later, knownCourts()), ShouldBeNil)
			for _, pid := range awayFive {
				row, ok := lastRow(agg.Rows(), model.EntityPlayer, pid, 1)
				So(ok, ShouldBeTrue)
				So(row.PlusMinusKnown, ShouldBeFalse)
			}
		})
	})
}

func TestAggregatorUnknownPlayer(t *testing.T) {
	Convey("Given an explicit roster", t, func() {
		report := model.NewQualityReport("g1")
		agg := stats.New("g1", report,
			stats.WithRoster(map[string][]string{"H": homeFive}))

		Convey("When an event credits a player outside it", func() {
			ev := model.CanonicalEvent{
				GameID: "g1", EventOrdinal: 0, Period: 1,
				Kind: model.KindRebound, TeamID: "H", PrimaryPlayerID: "ghost",
			}
			So(agg.Apply(&ev, nil), ShouldBeNil)

			Convey("Then a stub is created and a warning recorded", func() {
				row, ok := lastRow(agg.Rows(), model.EntityPlayer, "ghost", 0)
				So(ok, ShouldBeTrue)
				So(row.Stats.Rebounds, ShouldEqual, 1)
				So(report.Count(model.WarnUnknownPlayer), ShouldEqual, 1)
			})
		})
	})
}

func TestAggregatorDeterminism(t *testing.T) {
	Convey("Given one event stream applied to two fresh aggregators", t, func() {
		build := func() []model.Snapshot {
			agg := stats.New("g1", model.NewQualityReport("g1"), stats.WithTeams("H", "V"))
			events := []model.CanonicalEvent{
				{GameID: "g1", EventOrdinal: 0, Period: 1, Kind: model.KindShotMade, TeamID: "H",
					PrimaryPlayerID: "A", SecondaryPlayerID: "h2", ScoreAfter: model.Score{Home: 2},
					Shot: &model.ShotDetail{X: 20, Y: 10, Made: true, Points: 2}},
				{GameID: "g1", EventOrdinal: 1, Period: 1, Kind: model.KindShotMade, TeamID: "V",
					PrimaryPlayerID: "B", ScoreAfter: model.Score{Home: 2, Away: 3},
					Shot: &model.ShotDetail{X: 45, Y: 4, TypeText: "3PT Jump Shot", Made: true, Points: 3}},
				{GameID: "g1", EventOrdinal: 2, Period: 1, Kind: model.KindRebound, TeamID: "V",
					PrimaryPlayerID: "v2"},
			}
			for i := range events {
				So(agg.Apply(&events[i], knownCourts()), ShouldBeNil)
			}
			return agg.Rows()
		}

		Convey("Then the emitted rows are identical", func() {
			So(build(), ShouldResemble, build())
		})
	})
}

func TestAggregatorLateTeam(t *testing.T) {
	Convey("Given a team first seen after a scoring event it was absent from", t, func() {
		report := model.NewQualityReport("g1")
		agg := stats.New("g1", report)

		make2 := model.CanonicalEvent{
			GameID: "g1", EventOrdinal: 0, Period: 1, Kind: model.KindShotMade, TeamID: "H",
			PrimaryPlayerID: "A", ScoreAfter: model.Score{Home: 2},
			Shot: &model.ShotDetail{X: 20, Y: 10, Made: true, Points: 2},
		}
		So(agg.Apply(&make2, map[string]stats.OnCourt{
			"H": {Players: homeFive, Known: true},
		}), ShouldBeNil)

		rebound := model.CanonicalEvent{
			GameID: "g1", EventOrdinal: 1, Period: 1,
			Kind: model.KindRebound, TeamID: "V", PrimaryPlayerID: "v1",
		}
		So(agg.Apply(&rebound, nil), ShouldBeNil)

		make3 := model.CanonicalEvent{
			GameID: "g1", EventOrdinal: 2, Period: 1, Kind: model.KindShotMade, TeamID: "V",
			PrimaryPlayerID: "B", ScoreAfter: model.Score{Home: 2, Away: 3},
			Shot: &model.ShotDetail{X: 45, Y: 4, TypeText: "3PT Jump Shot", Made: true, Points: 3},
		}
		So(agg.Apply(&make3, knownCourts()), ShouldBeNil)

		Convey("Then the late team's plus/minus is unknown, not a partial sum", func() {
			// V missed the ordinal-0 debit; crediting its three would report
			// +3 where the true value is +1.
			for _, pid := range []string{"B", "v1"} {
				row, ok := lastRow(agg.Rows(), model.EntityPlayer, pid, 2)
				So(ok, ShouldBeTrue)
				So(row.PlusMinusKnown, ShouldBeFalse)
			}
			So(report.Count(model.WarnLineupUnknown), ShouldEqual, 1)
		})

		Convey("Then the team seen from the start stays exact", func() {
			row, ok := lastRow(agg.Rows(), model.EntityPlayer, "A", 2)
			So(ok, ShouldBeTrue)
			So(row.PlusMinusKnown, ShouldBeTrue)
			So(row.PlusMinus, ShouldEqual, -1)
		})
	})
}
