package shot_test

import (
	"testing"

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/internal/domain/shot"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the default threshold table", t, func() {
		c := shot.New()

		cases := []struct {
			name     string
			x, y     float64
			typeText string
			wantType model.ShotType
			wantZone model.ShotZone
		}{
			{"layup in the paint", 25, 4, "Layup", model.ShotTwoPoint, model.ZonePaint},
			{"free throw line jumper", 25, 19, "Jump Shot", model.ShotTwoPoint, model.ZonePaint},
			{"short middy outside the paint", 14, 8, "Jump Shot", model.ShotTwoPoint, model.ZoneShortMid},
			{"long two at the elbow extended", 10, 18, "Jump Shot", model.ShotTwoPoint, model.ZoneLongMid},
			{"deep two", 25, 27, "Jump Shot", model.ShotTwoPoint, model.ZoneDeepTwo},
			{"left corner three", 4, 6, "3PT Jump Shot", model.ShotThreePoint, model.ZoneCornerThree},
			{"right corner three", 46, 10, "3PT Jump Shot", model.ShotThreePoint, model.ZoneCornerThree},
			{"wing three past corner depth", 6, 20, "3PT Jump Shot", model.ShotThreePoint, model.ZoneAboveBreakThree},
			{"top of the key three", 25, 30, "three pointer", model.ShotThreePoint, model.ZoneAboveBreakThree},
			{"free throw", 25, 19, "Free Throw", model.ShotFreeThrow, model.ZonePaint},
		}

		for _, tc := range cases {
			Convey("When classifying a "+tc.name, func() {
				st, zone := c.Classify(tc.x, tc.y, tc.typeText)
				So(st, ShouldEqual, tc.wantType)
				So(zone, ShouldEqual, tc.wantZone)
			})
		}

		Convey("Then type comes from text, never from distance", func() {
			// A three-point location with plain text stays a two.
			st, zone := c.Classify(25, 30, "Jump Shot")
			So(st, ShouldEqual, model.ShotTwoPoint)
			So(zone, ShouldEqual, model.ZoneDeepTwo)
		})

		Convey("Then classification is idempotent", func() {
			t1, z1 := c.Classify(4, 6, "3PT Jump Shot")
			t2, z2 := c.Classify(4, 6, "3PT Jump Shot")
			So(t2, ShouldEqual, t1)
			So(z2, ShouldEqual, z1)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given coordinates recorded against the far basket", t, func() {
		c := shot.New()

		Convey("When normalized", func() {
			x, y := c.Normalize(46, 88)

			Convey("Then they mirror through midcourt", func() {
				So(x, ShouldAlmostEqual, 4)
				So(y, ShouldAlmostEqual, 6)
			})

			Convey("Then classification matches the near-basket twin", func() {
				farType, farZone := c.Classify(46, 88, "3PT Jump Shot")
				nearType, nearZone := c.Classify(4, 6, "3PT Jump Shot")
				So(farType, ShouldEqual, nearType)
				So(farZone, ShouldEqual, nearZone)
			})
		})

		Convey("Then near-half coordinates pass through untouched", func() {
			x, y := c.Normalize(4, 6)
			So(x, ShouldAlmostEqual, 4)
			So(y, ShouldAlmostEqual, 6)
		})
	})
}

func TestCustomThresholds(t *testing.T) {
	Convey("Given a widened corner cutoff", t, func() {
		custom := shot.DefaultThresholds()
		custom.CornerMinX = 15
		custom.CornerMaxX = 35
		c := shot.New(shot.WithThresholds(custom))

		Convey("Then a shot inside the default corner band reclassifies", func() {
			_, zone := c.Classify(12, 6, "3PT Jump Shot")
			So(zone, ShouldEqual, model.ZoneCornerThree)

			_, defZone := shot.New().Classify(12, 6, "3PT Jump Shot")
			So(defZone, ShouldEqual, model.ZoneAboveBreakThree)
		})
	})
}

func TestFromEvent(t *testing.T) {
	Convey("Given canonical events", t, func() {
		c := shot.New()

		Convey("When the event carries a shot payload", func() {
			ev := model.CanonicalEvent{
				GameID:          "g1",
				EventOrdinal:    42,
				TeamID:          "BOS",
				PrimaryPlayerID: "p1",
				Kind:            model.KindShotMade,
				Shot:            &model.ShotDetail{X: 46, Y: 88, TypeText: "3PT Jump Shot", Made: true, Points: 3},
			}
			se, ok := c.FromEvent(&ev)

			Convey("Then the shot joins the timeline at the event's ordinal", func() {
				So(ok, ShouldBeTrue)
				So(se.EventOrdinal, ShouldEqual, 42)
				So(se.GameID, ShouldEqual, "g1")
				So(se.PlayerID, ShouldEqual, "p1")
				So(se.Type, ShouldEqual, model.ShotThreePoint)
				So(se.Zone, ShouldEqual, model.ZoneCornerThree)
				So(se.Made, ShouldBeTrue)
			})

			Convey("Then stored coordinates are in the normalized frame", func() {
				So(se.X, ShouldAlmostEqual, 4)
				So(se.Y, ShouldAlmostEqual, 6)
			})
		})

		Convey("When the event has no shot payload", func() {
			ev := model.CanonicalEvent{GameID: "g1", EventOrdinal: 1, Kind: model.KindRebound}
			_, ok := c.FromEvent(&ev)
			So(ok, ShouldBeFalse)
		})
	})
}
