package performance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/netstats/internal/domain/dedupe"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	return time.Date(2024, time.May, d, 10, 0, 0, 0, time.UTC)
}

func rating(v float64) *float64 { return &v }

// keeperSeason puts player P at GK in every quarter of five completed games,
// the third of which is a forfeit loss, with one intercept per quarter.
func keeperSeason() ([]model.Game, *roster.Index, map[string]dedupe.Result) {
	var games []model.Game
	var rows []model.RosterAssignment
	var recs []model.StatRecord
	id := int64(0)
	for i := 1; i <= 5; i++ {
		g := model.Game{ID: fmt.Sprintf("g%d", i), HomeTeamID: "us", AwayTeamID: "them", Status: model.StatusCompleted, Date: day(i)}
		if i == 3 {
			g.Status = model.StatusForfeitLoss
		}
		games = append(games, g)
		for q := 1; q <= 4; q++ {
			rows = append(rows, model.RosterAssignment{GameID: g.ID, Quarter: q, Position: model.GK, PlayerID: "P"})
			id++
			recs = append(recs, model.StatRecord{ID: id, GameID: g.ID, Quarter: q, Position: model.GK, Intercepts: 1, GoalsAgainst: 2})
		}
	}
	byGame := make(map[string]dedupe.Result)
	for _, g := range games {
		var mine []model.StatRecord
		for _, r := range recs {
			if r.GameID == g.ID {
				mine = append(mine, r)
			}
		}
		byGame[g.ID] = dedupe.Deduplicate(mine)
	}
	return games, roster.Build(rows), byGame
}

func TestAggregate(t *testing.T) {
	Convey("Given a keeper who played every quarter of five games, one forfeited", t, func() {
		ctx := context.Background()
		games, idx, recs := keeperSeason()
		agg := performance.NewAggregator()

		Convey("When aggregating all games", func() {
			report := agg.Aggregate(ctx, []string{"P"}, games, idx, recs, performance.All())
			p := report.Totals["P"]

			Convey("Then the forfeit is excluded from games and totals", func() {
				So(p.GamesPlayed, ShouldEqual, 4)
				So(p.Intercepts, ShouldEqual, 16)
				So(p.GoalsAgainst, ShouldEqual, 32)
				So(report.Games, ShouldResemble, []string{"g5", "g4", "g2", "g1"})
			})

			Convey("Then the rating falls back to the formula", func() {
				So(p.Rating, ShouldAlmostEqual, 10.0) // 5 + 0.4*16 clamps at 10
			})

			Convey("Then incomplete rosters are reported as advisory", func() {
				So(report.IncompleteRosters, ShouldResemble, []string{"g5", "g4", "g2", "g1"})
			})
		})

		Convey("When aggregating the last two completed games", func() {
			report := agg.Aggregate(ctx, []string{"P"}, games, idx, recs, performance.LastN(2))

			Convey("Then only the two most recent count", func() {
				So(report.Totals["P"].GamesPlayed, ShouldEqual, 2)
				So(report.Games, ShouldResemble, []string{"g5", "g4"})
			})
		})
	})

	Convey("Given a player on court once with no stat record", t, func() {
		g := model.Game{ID: "G", Status: model.StatusCompleted, Date: day(1)}
		idx := roster.Build([]model.RosterAssignment{{GameID: "G", Quarter: 2, Position: model.GS, PlayerID: "Q"}})
		report := performance.NewAggregator().Aggregate(context.Background(), nil, []model.Game{g}, idx,
			map[string]dedupe.Result{}, performance.All())

		Convey("Then the game still counts as played", func() {
			So(report.Totals["Q"].GamesPlayed, ShouldEqual, 1)
			So(report.Totals["Q"].Goals, ShouldEqual, 0)
		})
	})

	Convey("Given lineups entered for games not yet finished", t, func() {
		games := []model.Game{
			{ID: "next", Status: model.StatusUpcoming, Date: day(20)},
			{ID: "live", Status: model.StatusInProgress, Date: day(19)},
		}
		idx := roster.Build([]model.RosterAssignment{
			{GameID: "next", Quarter: 1, Position: model.GS, PlayerID: "p1"},
			{GameID: "live", Quarter: 1, Position: model.GS, PlayerID: "p1"},
		})
		recs := map[string]dedupe.Result{
			"live": dedupe.Deduplicate([]model.StatRecord{{ID: 1, GameID: "live", Quarter: 1, Position: model.GS, GoalsFor: 3}}),
		}

		for _, tr := range []performance.TimeRange{performance.All(), performance.Month(day(1)), performance.LastN(5)} {
			report := performance.NewAggregator().Aggregate(context.Background(), []string{"p1"}, games, idx, recs, tr)

			Convey("Then no game is played under "+tr.String(), func() {
				So(report.Totals["p1"].GamesPlayed, ShouldEqual, 0)
				So(report.Totals["p1"].Goals, ShouldEqual, 0)
				So(report.Games, ShouldBeEmpty)
			})
		}
	})

	Convey("Given a requested player who never played", t, func() {
		report := performance.NewAggregator().Reduce([]string{"ghost"}, nil)

		Convey("Then totals are zero and the rating is 5", func() {
			So(report.Totals["ghost"].GamesPlayed, ShouldEqual, 0)
			So(report.Totals["ghost"].Goals, ShouldEqual, 0)
			So(report.Totals["ghost"].Rating, ShouldEqual, 5.0)
		})
	})

	Convey("Given recorded quarter-one ratings in several games", t, func() {
		games := []model.Game{
			{ID: "old", Status: model.StatusCompleted, Date: day(1)},
			{ID: "new", Status: model.StatusCompleted, Date: day(9)},
			{ID: "mid", Status: model.StatusCompleted, Date: day(5)},
		}
		var rows []model.RosterAssignment
		recs := make(map[string]dedupe.Result)
		for i, g := range games {
			rows = append(rows,
				model.RosterAssignment{GameID: g.ID, Quarter: 1, Position: model.C, PlayerID: "R"},
				model.RosterAssignment{GameID: g.ID, Quarter: 2, Position: model.C, PlayerID: "R"},
			)
			var q1Rating *float64
			if g.ID != "new" {
				q1Rating = rating(float64(6 + i))
			}
			recs[g.ID] = dedupe.Deduplicate([]model.StatRecord{
				{ID: 1, GameID: g.ID, Quarter: 1, Position: model.C, Rating: q1Rating},
				{ID: 2, GameID: g.ID, Quarter: 2, Position: model.C, Rating: rating(1)},
			})
		}
		report := performance.NewAggregator().Aggregate(context.Background(), []string{"R"}, games, roster.Build(rows), recs, performance.All())

		Convey("Then the most recent game with a quarter-one rating wins", func() {
			So(report.Totals["R"].Rating, ShouldEqual, 8.0) // "mid" is index 2
			So(report.Totals["R"].GamesPlayed, ShouldEqual, 3)
		})
	})

	Convey("Given contributions in different orders", t, func() {
		_, idx, recs := keeperSeason()
		var cs []performance.Contribution
		for _, id := range []string{"g1", "g2", "g4", "g5"} {
			cs = append(cs, performance.Contribute(model.Game{ID: id, Date: day(len(cs) + 1)}, idx, recs[id]))
		}
		reversed := []performance.Contribution{cs[3], cs[2], cs[1], cs[0]}
		agg := performance.NewAggregator()

		Convey("Then the reduction is the same", func() {
			So(agg.Reduce(nil, reversed), ShouldResemble, agg.Reduce(nil, cs))
		})
	})
}

func TestRater(t *testing.T) {
	Convey("Given the default rater", t, func() {
		r := performance.DefaultRater()

		So(r.Rate(model.PlayerStatTotals{}), ShouldEqual, 5.0)
		So(r.Rate(model.PlayerStatTotals{Goals: 10, Rebounds: 2, Intercepts: 1}), ShouldAlmostEqual, 8.0)
		So(r.Rate(model.PlayerStatTotals{Goals: 100}), ShouldEqual, 10.0)

		Convey("When weights are overridden", func() {
			w := r.WithWeights(map[string]float64{"goals": -1})

			Convey("Then the result is clamped at the minimum", func() {
				So(w.Rate(model.PlayerStatTotals{Goals: 20}), ShouldEqual, 1.0)
				So(w.Rebounds, ShouldEqual, 0.3)
			})
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given player totals", t, func() {
		totals := map[string]model.PlayerStatTotals{
			"b": {PlayerID: "b", Goals: 5, Rebounds: 1},
			"a": {PlayerID: "a", Goals: 5, Rebounds: 3},
			"c": {PlayerID: "c", Goals: 9},
		}

		Convey("When ranking by goals", func() {
			ranked := performance.Rank(totals, performance.MetricGoals)

			Convey("Then ties break on player id", func() {
				So(ranked[0].PlayerID, ShouldEqual, "c")
				So(ranked[1].PlayerID, ShouldEqual, "a")
				So(ranked[2].PlayerID, ShouldEqual, "b")
			})
		})

		Convey("When ranking by rebounds", func() {
			ranked := performance.Rank(totals, performance.MetricRebounds)
			So(ranked[0].PlayerID, ShouldEqual, "a")
		})

		Convey("When parsing metrics", func() {
			m, err := performance.ParseMetric("")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, performance.MetricGoals)
			_, err = performance.ParseMetric("assists")
			So(errors.Is(err, performance.ErrUnknownMetric), ShouldBeTrue)
		})
	})
}
