package scores_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	scores "github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

func TestModeComparisons(t *testing.T) {
	Convey("Given the two ordering modes", t, func() {
		Convey("When comparing under lower-is-better", func() {
			m := scores.LowerIsBetter

			Convey("Then a smaller score should win", func() {
				So(m.Better(41230, 41500), ShouldBeTrue)
				So(m.Better(41500, 41230), ShouldBeFalse)
				So(m.Worse(41500, 41230), ShouldBeTrue)
			})

			Convey("And equal scores should be neither better nor worse", func() {
				So(m.Better(41230, 41230), ShouldBeFalse)
				So(m.Worse(41230, 41230), ShouldBeFalse)
			})
		})

		Convey("When comparing under higher-is-better", func() {
			m := scores.HigherIsBetter

			Convey("Then a larger score should win", func() {
				So(m.Better(980, 750), ShouldBeTrue)
				So(m.Better(750, 980), ShouldBeFalse)
				So(m.Worse(750, 980), ShouldBeTrue)
			})

			Convey("And equal scores should be neither better nor worse", func() {
				So(m.Better(750, 750), ShouldBeFalse)
				So(m.Worse(750, 750), ShouldBeFalse)
			})
		})

		Convey("When flipping the mode", func() {
			Convey("Then Better and Worse should swap", func() {
				So(scores.LowerIsBetter.Better(10, 20), ShouldEqual, scores.HigherIsBetter.Worse(10, 20))
				So(scores.LowerIsBetter.Worse(10, 20), ShouldEqual, scores.HigherIsBetter.Better(10, 20))
			})
		})
	})
}

func TestImprovedAndWorsened(t *testing.T) {
	Convey("Given the rank-or-score improvement rule", t, func() {
		m := scores.LowerIsBetter

		Convey("When the score improves", func() {
			old := scores.Standing{Rank: 5, Score: 41500}
			updated := scores.Standing{Rank: 5, Score: 41230}

			Convey("Then the standing improved", func() {
				So(scores.Improved(m, old, updated), ShouldBeTrue)
				So(scores.Worsened(m, old, updated), ShouldBeFalse)
			})
		})

		Convey("When only the rank improves on an unchanged score", func() {
			// A tied score can gain position when a rival above drops out.
			old := scores.Standing{Rank: 7, Score: 41500}
			updated := scores.Standing{Rank: 6, Score: 41500}

			Convey("Then the standing still improved", func() {
				So(scores.Improved(m, old, updated), ShouldBeTrue)
			})
		})

		Convey("When the rank slips on an unchanged score", func() {
			old := scores.Standing{Rank: 6, Score: 41500}
			updated := scores.Standing{Rank: 8, Score: 41500}

			Convey("Then the standing worsened", func() {
				So(scores.Worsened(m, old, updated), ShouldBeTrue)
				So(scores.Improved(m, old, updated), ShouldBeFalse)
			})
		})

		Convey("When rank and score are both unchanged", func() {
			s := scores.Standing{Rank: 3, Score: 41500}

			Convey("Then the standing neither improved nor worsened", func() {
				So(scores.Improved(m, s, s), ShouldBeFalse)
				So(scores.Worsened(m, s, s), ShouldBeFalse)
			})
		})

		Convey("When points increase under higher-is-better", func() {
			hm := scores.HigherIsBetter
			old := scores.Standing{Rank: 12, Score: 750}
			updated := scores.Standing{Rank: 12, Score: 980}

			Convey("Then the standing improved", func() {
				So(scores.Improved(hm, old, updated), ShouldBeTrue)
			})
		})
	})
}
