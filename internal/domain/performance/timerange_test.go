package performance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFilterGames(t *testing.T) {
	Convey("Given a mixed season", t, func() {
		games := []model.Game{
			{ID: "a", Status: model.StatusCompleted, Date: time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC)},
			{ID: "b", Status: model.StatusForfeitWin, Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "c", Status: model.StatusCompleted, Date: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
			{ID: "d", Status: model.StatusBye, Date: time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)},
			{ID: "e", Status: model.StatusInProgress, Date: time.Date(2024, 5, 23, 0, 0, 0, 0, time.UTC)},
			{ID: "f", Status: model.StatusAbandoned, Date: time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)},
			{ID: "g", Status: model.StatusCompleted, Date: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
			{ID: "h", Status: model.StatusUpcoming, Date: time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)},
		}
		ids := func(gs []model.Game) []string {
			out := make([]string, 0, len(gs))
			for _, g := range gs {
				out = append(out, g.ID)
			}
			return out
		}

		Convey("When selecting all", func() {
			So(ids(performance.FilterGames(games, performance.All())), ShouldResemble, []string{"c", "g", "a"})
		})

		Convey("When selecting the last two", func() {
			So(ids(performance.FilterGames(games, performance.LastN(2))), ShouldResemble, []string{"c", "g"})
		})

		Convey("When selecting a calendar month", func() {
			ref := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
			So(ids(performance.FilterGames(games, performance.Month(ref))), ShouldResemble, []string{"c", "g"})
		})
	})
}

func TestParseTimeRange(t *testing.T) {
	Convey("Given time range strings", t, func() {
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		tr, err := performance.ParseTimeRange("", 5, now)
		So(err, ShouldBeNil)
		So(tr.Kind, ShouldEqual, performance.RangeAll)

		tr, err = performance.ParseTimeRange("last", 5, now)
		So(err, ShouldBeNil)
		So(tr, ShouldResemble, performance.LastN(5))

		tr, err = performance.ParseTimeRange("last-3", 5, now)
		So(err, ShouldBeNil)
		So(tr.N, ShouldEqual, 3)
		So(tr.String(), ShouldEqual, "last-3")

		tr, err = performance.ParseTimeRange("LAST10", 5, now)
		So(err, ShouldBeNil)
		So(tr.N, ShouldEqual, 10)

		tr, err = performance.ParseTimeRange("month", 5, now)
		So(err, ShouldBeNil)
		So(tr.Ref, ShouldEqual, now)

		_, err = performance.ParseTimeRange("last-0", 5, now)
		So(errors.Is(err, performance.ErrInvalidTimeRange), ShouldBeTrue)
		_, err = performance.ParseTimeRange("season", 5, now)
		So(errors.Is(err, performance.ErrInvalidTimeRange), ShouldBeTrue)
	})
}
