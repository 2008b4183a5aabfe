package scores_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	scores "github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

func TestCategorySet(t *testing.T) {
	Convey("Given the fixed category set", t, func() {
		Convey("When enumerating all categories", func() {
			all := scores.All()

			Convey("Then it should contain exactly eight categories", func() {
				So(all, ShouldHaveLength, 8)
			})

			Convey("And the globals should come before the campaigns", func() {
				So(all[0], ShouldEqual, scores.General)
				So(all[1], ShouldEqual, scores.Ladder)
			})

			Convey("And every category should be valid", func() {
				for _, c := range all {
					So(c.Valid(), ShouldBeTrue)
				}
			})
		})

		Convey("When enumerating the campaigns", func() {
			cs := scores.Campaigns()

			Convey("Then there should be six of them", func() {
				So(cs, ShouldHaveLength, 6)
			})

			Convey("And each should report as a campaign", func() {
				for _, c := range cs {
					So(c.IsCampaign(), ShouldBeTrue)
				}
			})

			Convey("And mutating the returned slice should not affect a later call", func() {
				cs[0] = scores.General
				So(scores.Campaigns()[0], ShouldEqual, scores.Race)
			})
		})

		Convey("When checking the globals", func() {
			Convey("Then they should not be campaigns", func() {
				So(scores.General.IsCampaign(), ShouldBeFalse)
				So(scores.Ladder.IsCampaign(), ShouldBeFalse)
			})
		})

		Convey("When checking a free-form string", func() {
			Convey("Then it should be invalid", func() {
				So(scores.Category("teams").Valid(), ShouldBeFalse)
				So(scores.Category("").Valid(), ShouldBeFalse)
			})
		})
	})
}

func TestDefaultMode(t *testing.T) {
	Convey("Given the per-category ordering defaults", t, func() {
		Convey("Then point-based categories should be higher-is-better", func() {
			So(scores.DefaultMode(scores.General), ShouldEqual, scores.HigherIsBetter)
			So(scores.DefaultMode(scores.Ladder), ShouldEqual, scores.HigherIsBetter)
			So(scores.DefaultMode(scores.Stunts), ShouldEqual, scores.HigherIsBetter)
		})

		Convey("Then time-based campaigns should be lower-is-better", func() {
			for _, c := range []scores.Category{scores.Race, scores.Puzzle, scores.Platform, scores.Nations, scores.Star} {
				So(scores.DefaultMode(c), ShouldEqual, scores.LowerIsBetter)
			}
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given the cyclic round identifier", t, func() {
		Convey("When advancing through the cycle", func() {
			Convey("Then each round should be followed by the next", func() {
				So(scores.Round(1).Next(), ShouldEqual, scores.Round(2))
				So(scores.Round(5).Next(), ShouldEqual, scores.Round(6))
			})

			Convey("And the last round should wrap to the first", func() {
				So(scores.Round(6).Next(), ShouldEqual, scores.Round(1))
			})

			Convey("And six advances should return to the start", func() {
				r := scores.Round(3)
				for i := 0; i < 6; i++ {
					r = r.Next()
				}
				So(r, ShouldEqual, scores.Round(3))
			})
		})

		Convey("When validating round values", func() {
			Convey("Then 1 through 6 should be valid", func() {
				for r := scores.Round(1); r <= 6; r++ {
					So(r.Valid(), ShouldBeTrue)
				}
			})

			Convey("And the zero value and out-of-range values should not", func() {
				So(scores.Round(0).Valid(), ShouldBeFalse)
				So(scores.Round(7).Valid(), ShouldBeFalse)
				So(scores.Round(-1).Valid(), ShouldBeFalse)
			})
		})
	})
}
