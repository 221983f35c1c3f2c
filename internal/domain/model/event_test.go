package model_test

import (
	"testing"

	model "github.com/courtlytics/pbp/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScoreDiff(t *testing.T) {
	convey.Convey("Given a running score", t, func() {
		convey.Convey("When the home team leads", func() {
			convey.So(model.Score{Home: 10, Away: 7}.Diff(), convey.ShouldEqual, 3)
		})
		convey.Convey("When the away team leads", func() {
			convey.So(model.Score{Home: 7, Away: 10}.Diff(), convey.ShouldEqual, -3)
		})
		convey.Convey("When the game is tied", func() {
			convey.So(model.Score{}.Diff(), convey.ShouldEqual, 0)
		})
	})
}

func TestEventIsScoring(t *testing.T) {
	convey.Convey("Given canonical events", t, func() {
		convey.Convey("When a made shot carries its payload", func() {
			ev := model.CanonicalEvent{
				Kind: model.KindShotMade,
				Shot: &model.ShotDetail{Made: true, Points: 2},
			}
			convey.So(ev.IsScoring(), convey.ShouldBeTrue)
			convey.So(ev.IsShot(), convey.ShouldBeTrue)
		})

		convey.Convey("When a free throw misses", func() {
			ev := model.CanonicalEvent{
				Kind: model.KindFreeThrow,
				Shot: &model.ShotDetail{Made: false, Points: 1},
			}
			convey.So(ev.IsScoring(), convey.ShouldBeFalse)
			convey.So(ev.IsShot(), convey.ShouldBeTrue)
		})

		convey.Convey("When a scoring event arrives without a shot payload", func() {
			ev := model.CanonicalEvent{Kind: model.KindScore}
			convey.So(ev.IsScoring(), convey.ShouldBeTrue)
			convey.So(ev.IsShot(), convey.ShouldBeFalse)
		})

		convey.Convey("When the event never touches the scoreboard", func() {
			for _, kind := range []model.EventKind{
				model.KindRebound, model.KindSubstitution,
				model.KindTimeout, model.KindPeriodBoundary, model.KindOther,
			} {
				ev := model.CanonicalEvent{Kind: kind}
				convey.So(ev.IsScoring(), convey.ShouldBeFalse)
			}
		})
	})
}

func TestQualityReport(t *testing.T) {
	convey.Convey("Given an empty quality report", t, func() {
		report := model.NewQualityReport("g1")
		convey.So(report.Clean(), convey.ShouldBeTrue)

		convey.Convey("When warnings accumulate", func() {
			report.Warnf(model.WarnMalformedEvent, model.BaselineOrdinal, "skipping %q", "evt-1")
			report.Warnf(model.WarnLineupInferred, 12, "lineup resolved at ordinal %d", 12)
			report.Warnf(model.WarnLineupInferred, 48, "lineup resolved at ordinal %d", 48)

			convey.Convey("Then they are counted by kind", func() {
				convey.So(report.Clean(), convey.ShouldBeFalse)
				convey.So(report.Count(model.WarnMalformedEvent), convey.ShouldEqual, 1)
				convey.So(report.Count(model.WarnLineupInferred), convey.ShouldEqual, 2)
				convey.So(report.Count(model.WarnInvalidSubstitution), convey.ShouldEqual, 0)
				convey.So(report.Warnings, convey.ShouldHaveLength, 3)
			})

			convey.Convey("Then each warning keeps its anchor ordinal", func() {
				convey.So(report.Warnings[0].Ordinal, convey.ShouldEqual, model.BaselineOrdinal)
				convey.So(report.Warnings[1].Ordinal, convey.ShouldEqual, 12)
				convey.So(report.Warnings[1].Message, convey.ShouldContainSubstring, "ordinal 12")
			})
		})
	})
}

func TestLineupInterval(t *testing.T) {
	convey.Convey("Given lineup intervals", t, func() {
		open := model.LineupInterval{PlayerID: "p1", EnterOrdinal: 0, ExitOrdinal: -1}
		closed := model.LineupInterval{PlayerID: "p1", EnterOrdinal: 0, ExitOrdinal: 40}

		convey.So(open.Open(), convey.ShouldBeTrue)
		convey.So(closed.Open(), convey.ShouldBeFalse)
	})
}
