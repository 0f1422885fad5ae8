package dedupe_test

import (
	"context"
	"math/rand"
	"testing"

	dedupe "github.com/okian/netstats/internal/domain/dedupe"
	"github.com/okian/netstats/internal/domain/model"
	"github.com/okian/netstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func randomRecords(rng *rand.Rand, n int) []model.StatRecord {
	games := []string{"g1", "g2"}
	out := make([]model.StatRecord, n)
	for i := range out {
		out[i] = model.StatRecord{
			ID:       int64(rng.Intn(50)),
			GameID:   games[rng.Intn(len(games))],
			Quarter:  rng.Intn(6), // includes 0 and 5 to exercise drops
			Position: model.Positions[rng.Intn(len(model.Positions))],
			GoalsFor: rng.Intn(10),
		}
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	Convey("Given a deduplicator", t, func() {
		ctx := context.Background()
		d := dedupe.New(dedupe.WithLogger(logger.Get()))

		Convey("When two records share a slot", func() {
			res := d.Deduplicate(ctx, []model.StatRecord{
				{ID: 9, GameID: "42", Quarter: 1, Position: model.GS, GoalsFor: 6},
				{ID: 5, GameID: "42", Quarter: 1, Position: model.GS, GoalsFor: 4},
			})

			Convey("Then the highest id wins regardless of order", func() {
				So(res.Len(), ShouldEqual, 1)
				rec, ok := res.Slot("42", 1, model.GS)
				So(ok, ShouldBeTrue)
				So(rec.ID, ShouldEqual, 9)
				So(rec.GoalsFor, ShouldEqual, 6)
				So(res.Report.Superseded, ShouldEqual, 1)
				So(res.Report.Dropped, ShouldEqual, 0)
			})
		})

		Convey("When ids tie", func() {
			res := d.Deduplicate(ctx, []model.StatRecord{
				{ID: 3, GameID: "g", Quarter: 2, Position: model.C, Intercepts: 1},
				{ID: 3, GameID: "g", Quarter: 2, Position: model.C, Intercepts: 2},
			})

			Convey("Then the later record in input order wins", func() {
				rec, _ := res.Slot("g", 2, model.C)
				So(rec.Intercepts, ShouldEqual, 2)
			})
		})

		Convey("When records are malformed", func() {
			res := d.Deduplicate(ctx, []model.StatRecord{
				{ID: 1, Quarter: 1, Position: model.GS, GoalsFor: 10},
				{ID: 2, GameID: "g", Position: model.GS, GoalsFor: 10},
				{ID: 3, GameID: "g", Quarter: 1, GoalsFor: 10},
				{ID: 4, GameID: "g", Quarter: 1, Position: model.Off, GoalsFor: 10},
				{ID: 5, GameID: "g", Quarter: 1, Position: model.GA, GoalsFor: 1},
			})

			Convey("Then they are dropped and counted without failing", func() {
				So(res.Len(), ShouldEqual, 1)
				So(res.Report.Dropped, ShouldEqual, 4)
				So(res.Records[0].GoalsFor, ShouldEqual, 1)
			})
		})

		Convey("When records arrive out of court order", func() {
			res := d.Deduplicate(ctx, []model.StatRecord{
				{ID: 1, GameID: "g", Quarter: 2, Position: model.GK},
				{ID: 2, GameID: "g", Quarter: 1, Position: model.GK},
				{ID: 3, GameID: "g", Quarter: 1, Position: model.GS},
			})

			Convey("Then output is ordered by quarter then position", func() {
				So(res.Records[0].Position, ShouldEqual, model.GS)
				So(res.Records[1].Position, ShouldEqual, model.GK)
				So(res.Records[1].Quarter, ShouldEqual, 1)
				So(res.Records[2].Quarter, ShouldEqual, 2)
				So(len(res.Quarter("g", 1)), ShouldEqual, 2)
				So(len(res.Quarter("g", 3)), ShouldEqual, 0)
			})
		})

		Convey("When deduplication runs on its own output", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 50; i++ {
				first := dedupe.Deduplicate(randomRecords(rng, 40))
				second := dedupe.Deduplicate(first.Records)

				So(second.Records, ShouldResemble, first.Records)
				So(second.Report.Dropped, ShouldEqual, 0)
				So(second.Report.Superseded, ShouldEqual, 0)
			}
		})

		Convey("When the input is empty", func() {
			res := d.Deduplicate(ctx, nil)

			Convey("Then the result is empty", func() {
				So(res.Len(), ShouldEqual, 0)
				_, ok := res.Slot("g", 1, model.GS)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
